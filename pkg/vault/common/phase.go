package common

// Phase is a step of a vault protocol run. Phases execute in increasing
// order.
type Phase uint8

const (
	PhaseUnknown Phase = iota
	PhaseInitialize
	PhaseDeposit
	PhaseWithdraw
	PhaseTransfer
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseDeposit:
		return "deposit"
	case PhaseWithdraw:
		return "withdraw"
	case PhaseTransfer:
		return "transfer"
	}
	return "unknown"
}

// IsValid reports whether p is a defined protocol phase.
func (p Phase) IsValid() bool {
	return p >= PhaseInitialize && p <= PhaseTransfer
}
