// Package shortvec implements the compact-u16 length prefix used by solana
// transactions: 7 bits per byte, least significant group first, with the high
// bit set on every byte but the last.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

// EncodeLen writes the encoding of length to w. Lengths above math.MaxUint16
// are rejected.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, errors.Errorf("length %d out of range [0, %d]", length, math.MaxUint16)
	}

	var encoded [maxEncodedLen]byte
	n := 0
	for {
		encoded[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		encoded[n] |= 0x80
		n++
	}

	return w.Write(encoded[:n])
}

// DecodeLen reads an encoded length from r.
func DecodeLen(r io.Reader) (int, error) {
	var (
		val int
		b   [1]byte
	)
	for i := 0; ; i++ {
		if i == maxEncodedLen {
			return 0, errors.Errorf("encoded length exceeds %d bytes", maxEncodedLen)
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (i * 7)
		if b[0]&0x80 == 0 {
			return val, nil
		}
	}
}
