package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

// SignatureFromBase58 parses a base58 encoded transaction signature.
func SignatureFromBase58(value string) (Signature, error) {
	var sig Signature

	decoded, err := base58.Decode(value)
	if err != nil {
		return sig, errors.Wrap(err, "invalid base58 signature")
	}
	if len(decoded) != ed25519.SignatureSize {
		return sig, errors.Errorf("invalid signature length: %d", len(decoded))
	}

	copy(sig[:], decoded)
	return sig, nil
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy transaction paid for
// by payer. Each unique account appears once in the message, sorted payer
// first, then signers, then writable accounts, with programs last.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			Role:       AccountRoleSigner,
			isPayer:    true,
		},
	}

	for _, i := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: i.Program,
			Role:      AccountRoleReadonlyReference,
			isProgram: true,
		})
		accounts = append(accounts, i.Accounts...)
	}

	accounts = filterUnique(accounts)
	sort.Sort(SortableAccountMeta(accounts))

	var m Message
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.PublicKey)

		if account.IsSigner {
			m.Header.NumSignatures++

			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	// Compiled instructions reference accounts by index, in the caller's
	// original account order.
	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, i.Program)),
			Data:         i.Data,
		}

		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, byte(indexOf(m.Accounts, a.PublicKey)))
		}

		m.Instructions = append(m.Instructions, c)
	}

	for i := range m.Accounts {
		if len(m.Accounts[i]) == 0 {
			m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		}
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the first signature, which identifies the transaction.
func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

// Signers returns the accounts that are expected to sign, in signature order.
func (t *Transaction) Signers() []ed25519.PublicKey {
	return t.Message.Accounts[:t.Message.Header.NumSignatures]
}

func (t *Transaction) String() string {
	var sb strings.Builder

	fmt.Fprintln(&sb, "Signatures:")
	for i, s := range t.Signatures {
		fmt.Fprintf(&sb, "  %d: %s\n", i, s)
	}

	h := t.Message.Header
	fmt.Fprintf(&sb, "Header: signatures=%d readonly_signed=%d readonly=%d\n", h.NumSignatures, h.NumReadonlySigned, h.NumReadOnly)
	fmt.Fprintf(&sb, "Blockhash: %s\n", base58.Encode(t.Message.RecentBlockhash[:]))

	fmt.Fprintln(&sb, "Accounts:")
	for i, a := range t.Message.Accounts {
		fmt.Fprintf(&sb, "  %d: %s\n", i, base58.Encode(a))
	}

	fmt.Fprintln(&sb, "Instructions:")
	for i, c := range t.Message.Instructions {
		fmt.Fprintf(&sb, "  %d: program=%d accounts=%v data=%x\n", i, c.ProgramIndex, c.Accounts, c.Data)
	}

	return sb.String()
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each of the provided keys. Signature slots for
// signers that are not provided are left zeroed.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// filterUnique keeps the first occurrence of each account, promoting it to
// the union of the permissions of every occurrence.
func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))
	seen := make(map[string]int, len(accounts))

	for _, account := range accounts {
		key := string(account.PublicKey)

		i, ok := seen[key]
		if !ok {
			seen[key] = len(filtered)
			filtered = append(filtered, account)
			continue
		}

		filtered[i].IsSigner = filtered[i].IsSigner || account.IsSigner
		filtered[i].IsWritable = filtered[i].IsWritable || account.IsWritable
		filtered[i].isPayer = filtered[i].isPayer || account.isPayer
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
