package order

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusFulfilled      Status = "fulfilled"
	StatusCancelled      Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusFulfilled, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further payment transition is possible.
// Paid orders can still move to fulfilled, but never to cancelled.
func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}
