package hold

type Status string

const (
	StatusActive    Status = "active"
	StatusCommitted Status = "committed"
	StatusReleased  Status = "released"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCommitted, StatusReleased:
		return true
	default:
		return false
	}
}
