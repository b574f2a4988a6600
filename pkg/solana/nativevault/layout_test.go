package nativevault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountLayoutSizes(t *testing.T) {
	assert.Equal(t, 32, VaultAccountSize)
	assert.Equal(t, 40, VaultAccountLayout.InstructionDataSize())

	assert.Equal(t, 50, EscrowAccountSize)
	assert.Equal(t, 58, EscrowAccountLayout.InstructionDataSize())
}

func TestAccountLayoutOffset(t *testing.T) {
	for _, tc := range []struct {
		field    string
		expected int
	}{
		{"signer", 0},
		{"balance", 32},
		{"deposit_time", 40},
		{"done", 48},
	} {
		offset, ok := EscrowAccountLayout.Offset(tc.field)
		assert.True(t, ok, tc.field)
		assert.Equal(t, tc.expected, offset, tc.field)
	}

	_, ok := EscrowAccountLayout.Offset("owner")
	assert.False(t, ok)
}

func TestInstructionDataSize(t *testing.T) {
	assert.Equal(t, 40, InstructionTypeInitialize.DataSize())
	assert.Equal(t, 58, InstructionTypeDeposit.DataSize())
	assert.Equal(t, 58, InstructionTypeWithdraw.DataSize())
	assert.Equal(t, 9, InstructionTypeTransfer.DataSize())

	assert.Panics(t, func() {
		InstructionType(4).DataSize()
	})
	assert.Panics(t, func() {
		encodeInstructionData(InstructionType(255), nil)
	})
}

func TestEncodeInstructionData_OversizedArgs(t *testing.T) {
	type oversized struct {
		A, B uint64
	}

	assert.Panics(t, func() {
		encodeInstructionData(InstructionTypeTransfer, oversized{A: 1, B: 2})
	})
}
