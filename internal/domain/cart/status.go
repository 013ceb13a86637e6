package cart

import (
	"fmt"
)

// LineStatus tracks a cart line through the order lifecycle. Forward-only,
// except Cancelled which is a terminal escape valve from any state.
type LineStatus string

const (
	StatusInCart    LineStatus = "IN_CART"
	StatusPrepared  LineStatus = "PREPARED"
	StatusShipped   LineStatus = "SHIPPED"
	StatusReceived  LineStatus = "RECEIVED"
	StatusCancelled LineStatus = "CANCELLED"
)

var statusOrder = map[LineStatus]int{
	StatusInCart:   0,
	StatusPrepared: 1,
	StatusShipped:  2,
	StatusReceived: 3,
}

func ParseLineStatus(s string) (LineStatus, error) {
	switch LineStatus(s) {
	case StatusInCart, StatusPrepared, StatusShipped, StatusReceived, StatusCancelled:
		return LineStatus(s), nil
	default:
		return "", fmt.Errorf("unknown line status %q", s)
	}
}

// CanTransitionTo reports whether moving to target is allowed. No transitions
// leave Cancelled.
func (s LineStatus) CanTransitionTo(target LineStatus) bool {
	if s == StatusCancelled {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	from, okFrom := statusOrder[s]
	to, okTo := statusOrder[target]
	if !okFrom || !okTo {
		return false
	}
	return to >= from
}
