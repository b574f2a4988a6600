package solana

import (
	"bytes"
	"crypto/ed25519"
	"errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
	ErrMissingProgram       = errors.New("instruction program is empty")
	ErrMissingData          = errors.New("instruction data is missing")
)

// AccountRole describes how an instruction references an account.
type AccountRole uint8

const (
	AccountRoleUnknown AccountRole = iota

	// AccountRoleSigner is a writable account whose private key is held by
	// the client and signs the transaction.
	AccountRoleSigner

	// AccountRoleWritableOnly is a writable account that does not sign.
	AccountRoleWritableOnly

	// AccountRoleReadonlyReference is a readonly, non-signing account, such as
	// a program.
	AccountRoleReadonlyReference

	// AccountRoleDelegatedAuthority is a writable program derived address.
	// It is flagged as a signer on the wire, but authorization is delegated
	// to the owning program and no private key exists for it.
	AccountRoleDelegatedAuthority
)

// IsSigner returns the on-wire signer flag for the role.
func (r AccountRole) IsSigner() bool {
	return r == AccountRoleSigner || r == AccountRoleDelegatedAuthority
}

// IsWritable returns the on-wire writable flag for the role.
func (r AccountRole) IsWritable() bool {
	switch r {
	case AccountRoleSigner, AccountRoleWritableOnly, AccountRoleDelegatedAuthority:
		return true
	}
	return false
}

// RequiresSignature reports whether a client held private key must sign for
// an account with this role.
func (r AccountRole) RequiresSignature() bool {
	return r == AccountRoleSigner
}

func (r AccountRole) String() string {
	switch r {
	case AccountRoleSigner:
		return "signer"
	case AccountRoleWritableOnly:
		return "writable"
	case AccountRoleReadonlyReference:
		return "readonly"
	case AccountRoleDelegatedAuthority:
		return "delegated_authority"
	}
	return "unknown"
}

// AccountMeta represents the account information required
// for building transactions.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
	Role       AccountRole
	isPayer    bool
	isProgram  bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	role := AccountRoleWritableOnly
	if isSigner {
		role = AccountRoleSigner
	}

	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
		Role:       role,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	meta := AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
	if !isSigner {
		meta.Role = AccountRoleReadonlyReference
	}
	return meta
}

// NewAccountMetaWithRole creates a new AccountMeta whose wire flags are derived
// from role.
func NewAccountMetaWithRole(pub ed25519.PublicKey, role AccountRole) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   role.IsSigner(),
		IsWritable: role.IsWritable(),
		Role:       role,
	}
}

// RequiresSignature reports whether the client must provide a signature for
// the account. Delegated authorities are flagged as signers, but are never
// signed by the client.
func (m AccountMeta) RequiresSignature() bool {
	if m.Role == AccountRoleUnknown {
		return m.IsSigner
	}
	return m.Role.RequiresSignature()
}

// SortableAccountMeta is a sortable []AccountMeta based on the solana transaction
// account sorting rules.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
type SortableAccountMeta []AccountMeta

// Len is the number of elements in the collection.
func (s SortableAccountMeta) Len() int {
	return len(s)
}

// Less reports whether the element with
// index i should sort before the element with index j.
func (s SortableAccountMeta) Less(i int, j int) bool {
	if s[i].isPayer != s[j].isPayer {
		return s[i].isPayer
	}
	if s[i].isProgram != s[j].isProgram {
		return !s[i].isProgram
	}

	if s[i].IsSigner != s[j].IsSigner {
		return s[i].IsSigner
	}
	if s[i].IsWritable != s[j].IsWritable {
		return s[i].IsWritable
	}

	return bytes.Compare(s[i].PublicKey, s[j].PublicKey) < 0
}

// Swap swaps the elements with indexes i and j.
func (s SortableAccountMeta) Swap(i int, j int) {
	s[i], s[j] = s[j], s[i]
}

// Instruction represents a transaction instruction.
//
// Accounts are read positionally by the target program, so their order is
// part of the instruction's wire contract.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// BuildInstruction assembles an instruction after checking its structural
// shape. The program, data and accounts are copied, and account order is
// preserved exactly.
func BuildInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) (Instruction, error) {
	if len(program) == 0 {
		return Instruction{}, ErrMissingProgram
	}
	if data == nil {
		return Instruction{}, ErrMissingData
	}

	copiedAccounts := make([]AccountMeta, len(accounts))
	for i, account := range accounts {
		copiedAccounts[i] = account
		copiedAccounts[i].PublicKey = append(ed25519.PublicKey(nil), account.PublicKey...)
	}

	return Instruction{
		Program:  append(ed25519.PublicKey(nil), program...),
		Data:     append(make([]byte, 0, len(data)), data...),
		Accounts: copiedAccounts,
	}, nil
}

// SignerAccounts returns the accounts whose private keys must sign a
// transaction containing the instruction, in instruction order.
func (i Instruction) SignerAccounts() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, account := range i.Accounts {
		if account.RequiresSignature() {
			signers = append(signers, account.PublicKey)
		}
	}
	return signers
}

// CompiledInstruction represents an instruction that has been compiled into a transaction.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
