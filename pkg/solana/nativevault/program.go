package nativevault

import (
	"crypto/ed25519"
	"errors"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
)

// StorageReservationSize is the number of extra bytes the program reserves on
// top of an account's declared fields. Instruction payloads sized from an
// account layout include it.
const StorageReservationSize = 8
