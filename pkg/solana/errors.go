package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey identifies a transaction level failure reported by the
// cluster.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorProgramAccountNotFound  TransactionErrorKey = "ProgramAccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure         TransactionErrorKey = "SanitizeFailure"
)

// InstructionErrorKey identifies why a single instruction failed.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// CustomError is a program defined error code.
type CustomError uint32

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", uint32(c))
}

// InstructionError identifies the instruction that failed a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("instruction %d failed: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	switch err := i.Err.(type) {
	case nil:
		return ""
	case CustomError:
		return InstructionErrorCustom
	default:
		return InstructionErrorKey(err.Error())
	}
}

// CustomError returns the program error code, or nil when the instruction
// failed for a runtime reason.
func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

// TransactionError is a failure reported by the cluster for a submitted
// transaction.
type TransactionError struct {
	key         TransactionErrorKey
	instruction *InstructionError
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key}
}

func (t TransactionError) Error() string {
	if t.instruction != nil {
		return t.instruction.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

// InstructionError returns the failing instruction when the key is
// TransactionErrorInstructionError.
func (t TransactionError) InstructionError() *InstructionError {
	return t.instruction
}

// ParseRPCError extracts the transaction error carried in the data of an RPC
// error, such as a failed preflight simulation. Nil is returned when the RPC
// error isn't transaction related.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	raw, ok := data["err"]
	if !ok || raw == nil {
		return nil, nil
	}
	return ParseTransactionError(raw)
}

// ParseTransactionError parses the "err" value of a transaction status. The
// value is either a bare key, or a single entry object keyed by the error
// type.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return NewTransactionError(TransactionErrorKey(t)), nil
	case map[string]interface{}:
		key, value, err := singleEntry(t)
		if err != nil {
			return nil, errors.Wrap(err, "invalid transaction error")
		}

		txErr := NewTransactionError(TransactionErrorKey(key))
		if txErr.key != TransactionErrorInstructionError {
			return txErr, nil
		}

		txErr.instruction, err = parseInstructionError(value)
		if err != nil {
			return nil, errors.Wrap(err, "invalid instruction error")
		}
		return txErr, nil
	default:
		return nil, errors.Errorf("unhandled error type: %T", raw)
	}
}

// parseInstructionError parses an [index, reason] tuple, where reason is a
// key or a {"Custom": code} object.
func parseInstructionError(raw interface{}) (*InstructionError, error) {
	tuple, ok := raw.([]interface{})
	if !ok || len(tuple) != 2 {
		return nil, errors.Errorf("expected [index, reason] tuple, got %v", raw)
	}

	index, err := parseJSONNumber(tuple[0])
	if err != nil {
		return nil, err
	}

	ixnErr := &InstructionError{Index: int(index)}
	switch reason := tuple[1].(type) {
	case string:
		ixnErr.Err = errors.New(reason)
	case map[string]interface{}:
		key, value, err := singleEntry(reason)
		if err != nil {
			return nil, err
		}

		if InstructionErrorKey(key) != InstructionErrorCustom {
			ixnErr.Err = errors.New(key)
			break
		}

		code, err := parseJSONNumber(value)
		if err != nil {
			return nil, errors.Wrap(err, "invalid custom error code")
		}
		ixnErr.Err = CustomError(code)
	default:
		return nil, errors.Errorf("unhandled instruction error reason: %v", tuple[1])
	}

	return ixnErr, nil
}

func singleEntry(m map[string]interface{}) (string, interface{}, error) {
	if len(m) != 1 {
		return "", nil, errors.Errorf("expected a single entry, got %d", len(m))
	}

	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

// parseJSONNumber accepts the number representations produced by the decoders
// used for RPC responses.
func parseJSONNumber(v interface{}) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, errors.Errorf("non numeric value: %v", v)
}
