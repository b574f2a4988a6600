package nativevault

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/solana"
)

// DefaultEscrowNamespace is the seed prefix the program uses for per-user
// escrow addresses.
const DefaultEscrowNamespace = "SSF_PDA"

type GetEscrowAddressArgs struct {
	Program ed25519.PublicKey
	User    ed25519.PublicKey

	// Namespace defaults to DefaultEscrowNamespace
	Namespace string
}

// GetEscrowAddress derives the program owned escrow address for a user along
// with its bump seed. The result depends only on the program, the namespace
// and the user.
func GetEscrowAddress(args *GetEscrowAddressArgs) (ed25519.PublicKey, uint8, error) {
	if len(args.Program) != ed25519.PublicKeySize {
		return nil, 0, ErrInvalidProgram
	}
	if len(args.User) != ed25519.PublicKeySize {
		return nil, 0, errors.Errorf("invalid user key length: %d", len(args.User))
	}

	namespace := args.Namespace
	if len(namespace) == 0 {
		namespace = DefaultEscrowNamespace
	}

	address, bump, err := solana.FindProgramAddressAndBump(
		args.Program,
		[]byte(namespace),
		args.User,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving escrow address")
	}
	return address, bump, nil
}
