// Package tempban implements the temporary blacklist core: the ban registry,
// the admission policy applied to every request bound for the language-model
// backend, and the command handlers that decide who may ban whom.
package tempban

// Mention is one structured mention component of an inbound message: either
// the broadcast marker addressing everyone, or a raw user identifier.
type Mention struct {
	Broadcast bool
	UserID    any
}

// Event is the slice of an inbound update the ban core consumes. The
// transport layer adapts its own update type to this interface; raw
// identifiers may be integers or (possibly prefixed) strings.
type Event interface {
	// SelfID returns the raw identifier of the bot receiving the event.
	SelfID() any
	// SenderID returns the raw identifier of the event's sender.
	SenderID() any
	// Mentions returns the mention components of the message body, in order.
	Mentions() []Mention
}
