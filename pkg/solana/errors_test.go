package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeRaw(t *testing.T, value string) interface{} {
	d := json.NewDecoder(bytes.NewBufferString(value))
	d.UseNumber()

	var raw interface{}
	require.NoError(t, d.Decode(&raw))
	return raw
}

func TestParseTransactionError(t *testing.T) {
	for _, tc := range []struct {
		raw            string
		key            TransactionErrorKey
		index          int
		instructionKey InstructionErrorKey
		custom         *CustomError
	}{
		{
			raw: `"DuplicateSignature"`,
			key: TransactionErrorDuplicateSignature,
		},
		{
			raw: `{"InsufficientFundsForFee": null}`,
			key: TransactionErrorInsufficientFundsForFee,
		},
		{
			raw:            `{"InstructionError":[0,"InvalidArgument"]}`,
			key:            TransactionErrorInstructionError,
			index:          0,
			instructionKey: InstructionErrorInvalidArgument,
		},
		{
			raw:            `{"InstructionError":[2,{"Custom":3}]}`,
			key:            TransactionErrorInstructionError,
			index:          2,
			instructionKey: InstructionErrorCustom,
			custom:         func() *CustomError { c := CustomError(3); return &c }(),
		},
		{
			raw:            `{"InstructionError":[1,{"BorshIoError":"Unknown"}]}`,
			key:            TransactionErrorInstructionError,
			index:          1,
			instructionKey: "BorshIoError",
		},
	} {
		e, err := ParseTransactionError(decodeRaw(t, tc.raw))
		require.NoError(t, err, tc.raw)
		require.NotNil(t, e, tc.raw)

		assert.Equal(t, tc.key, e.ErrorKey(), tc.raw)
		if tc.key != TransactionErrorInstructionError {
			assert.Nil(t, e.InstructionError(), tc.raw)
			assert.Equal(t, string(tc.key), e.Error())
			continue
		}

		require.NotNil(t, e.InstructionError(), tc.raw)
		assert.Equal(t, tc.index, e.InstructionError().Index, tc.raw)
		assert.Equal(t, tc.instructionKey, e.InstructionError().ErrorKey(), tc.raw)
		assert.Equal(t, tc.custom, e.InstructionError().CustomError(), tc.raw)
		assert.Contains(t, e.Error(), "instruction")
	}
}

func TestParseTransactionError_Invalid(t *testing.T) {
	e, err := ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	for _, raw := range []string{
		`{"A": 1, "B": 2}`,
		`{"InstructionError":[0]}`,
		`{"InstructionError":["x","InvalidArgument"]}`,
		`{"InstructionError":[0,{"Custom":"abc"}]}`,
		`{"InstructionError":[0,5]}`,
		`12`,
	} {
		_, err := ParseTransactionError(decodeRaw(t, raw))
		assert.Error(t, err, raw)
	}
}

func TestParseRPCError(t *testing.T) {
	e, err := ParseRPCError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	e, err = ParseRPCError(&jsonrpc.RPCError{
		Code: -32002,
		Data: map[string]interface{}{"err": "BlockhashNotFound"},
	})
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorBlockhashNotFound, e.ErrorKey())

	e, err = ParseRPCError(&jsonrpc.RPCError{
		Code: -32002,
		Data: map[string]interface{}{"logs": []string{}},
	})
	assert.NoError(t, err)
	assert.Nil(t, e)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: "unexpected"})
	assert.Error(t, err)
}

func TestParseJSONNumber(t *testing.T) {
	for i, c := range []interface{}{"1", 1.0, 1, json.Number("1")} {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.EqualValues(t, 1, v, i)
	}

	_, err := parseJSONNumber(true)
	assert.Error(t, err)
}
