package enum

// Symbol spot, gold96
type Symbol string

const (
	SymbolSpot   Symbol = "spot"
	SymbolGold96 Symbol = "gold96"
)

func (s Symbol) IsAvailable() bool {
	switch s {
	case SymbolSpot, SymbolGold96:
		return true
	default:
		return false
	}
}

func (s Symbol) String() string {
	return string(s)
}
