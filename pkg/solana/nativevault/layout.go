package nativevault

// Field is a single fixed-width field in an on-chain account record.
type Field struct {
	Name string
	Size int
}

// AccountLayout describes the byte layout of an account record owned by the
// program. Instruction payload sizes are computed from it.
type AccountLayout struct {
	Name   string
	Fields []Field
}

// Size returns the sum of the field sizes.
func (l AccountLayout) Size() int {
	var size int
	for _, f := range l.Fields {
		size += f.Size
	}
	return size
}

// InstructionDataSize is the payload size for instructions that target an
// account with this layout.
func (l AccountLayout) InstructionDataSize() int {
	return l.Size() + StorageReservationSize
}

// Offset returns the byte offset of the named field.
func (l AccountLayout) Offset(name string) (int, bool) {
	var offset int
	for _, f := range l.Fields {
		if f.Name == name {
			return offset, true
		}
		offset += f.Size
	}
	return 0, false
}

var (
	VaultAccountLayout = AccountLayout{
		Name: "vault",
		Fields: []Field{
			{Name: "owner", Size: 32},
		},
	}

	// The done flag occupies two bytes in the program's sizing convention.
	EscrowAccountLayout = AccountLayout{
		Name: "escrow",
		Fields: []Field{
			{Name: "signer", Size: 32},
			{Name: "balance", Size: 8},
			{Name: "deposit_time", Size: 8},
			{Name: "done", Size: 2},
		},
	}
)

var (
	VaultAccountSize  = VaultAccountLayout.Size()
	EscrowAccountSize = EscrowAccountLayout.Size()
)
