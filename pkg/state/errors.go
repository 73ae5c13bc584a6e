package state

// Rejection is a rule-based refusal of a player action: the request was
// well-formed but the game rules forbid it right now. Handlers map these
// to 409 responses instead of 500s.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Reject builds a Rejection.
func Reject(reason string) *Rejection {
	return &Rejection{Reason: reason}
}
