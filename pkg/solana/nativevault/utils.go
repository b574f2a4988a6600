package nativevault

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
)

// encodeInstructionData lays out a fixed size payload: the instruction type
// followed by the borsh encoding of args, zero padded to the instruction's
// data size. A nil args encodes the type alone. Args must be passed by value,
// since borsh encodes pointers as optionals.
//
// Undefined instruction types and oversized args are programming errors and
// panic.
func encodeInstructionData(t InstructionType, args interface{}) []byte {
	data := make([]byte, t.DataSize())

	var offset int
	putInstructionType(data, t, &offset)

	if args == nil {
		return data
	}

	encoded, err := borsh.Serialize(args)
	if err != nil {
		panic(fmt.Sprintf("failed to serialize %s instruction args: %v", t, err))
	}
	if offset+len(encoded) > len(data) {
		panic(fmt.Sprintf("%s instruction args exceed payload size: %d > %d", t, offset+len(encoded), len(data)))
	}
	copy(data[offset:], encoded)

	return data
}

// decodeInstructionArgs checks the payload of an encoded instruction and
// borsh decodes its args into dst.
func decodeInstructionArgs(data []byte, expected InstructionType, argsSize int, dst interface{}) error {
	if len(data) != expected.DataSize() {
		return ErrInvalidInstructionData
	}

	t, err := GetInstructionType(data)
	if err != nil {
		return err
	}
	if t != expected {
		return ErrInvalidInstructionData
	}

	return borsh.Deserialize(dst, data[1:1+argsSize])
}

func putUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}

func getUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset += 1
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
