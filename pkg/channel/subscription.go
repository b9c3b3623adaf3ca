package channel

// Subscription identifies one Subscribe call. The zero value is invalid.
type Subscription struct {
	id uint64
	ch *Channel
}

// Cancel unsubscribes. It reports whether the subscription was still active.
func (s Subscription) Cancel() bool {
	if s.ch == nil {
		return false
	}
	return s.ch.Unsubscribe(s)
}

// Valid reports whether s came from a successful Subscribe call.
func (s Subscription) Valid() bool {
	return s.ch != nil && s.id != 0
}
