package nativevault

import (
	"fmt"
)

type InstructionType uint8

const (
	InstructionTypeInitialize InstructionType = iota
	InstructionTypeDeposit
	InstructionTypeWithdraw
	InstructionTypeTransfer
)

const (
	transferInstructionArgsSize = 8 // amount
)

// Payload sizes are fixed per instruction and computed once from the account
// layouts. Transfer has no backing record, so it carries no reservation.
var instructionDataSizes = map[InstructionType]int{
	InstructionTypeInitialize: VaultAccountLayout.InstructionDataSize(),
	InstructionTypeDeposit:    EscrowAccountLayout.InstructionDataSize(),
	InstructionTypeWithdraw:   EscrowAccountLayout.InstructionDataSize(),
	InstructionTypeTransfer:   1 + transferInstructionArgsSize,
}

// DataSize returns the fixed payload size for the instruction type. It panics
// on an undefined instruction type.
func (t InstructionType) DataSize() int {
	size, ok := instructionDataSizes[t]
	if !ok {
		panic(fmt.Sprintf("undefined instruction type: %d", t))
	}
	return size
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "initialize"
	case InstructionTypeDeposit:
		return "deposit"
	case InstructionTypeWithdraw:
		return "withdraw"
	case InstructionTypeTransfer:
		return "transfer"
	}
	return "unknown"
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	putUint8(dst, uint8(v), offset)
}

func getInstructionType(src []byte, dst *InstructionType, offset *int) {
	var v uint8
	getUint8(src, &v, offset)
	*dst = InstructionType(v)
}

// GetInstructionType returns the instruction type encoded in data.
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) < 1 {
		return 0, ErrInvalidInstructionData
	}

	var offset int
	var t InstructionType
	getInstructionType(data, &t, &offset)

	if _, ok := instructionDataSizes[t]; !ok {
		return t, ErrInvalidInstructionData
	}
	return t, nil
}
