package inventory

type State string

const (
	StateAvailable State = "available"
	StateHeld      State = "held"
	StateSold      State = "sold"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StateAvailable, StateHeld, StateSold:
		return true
	default:
		return false
	}
}
