package interfaces

import "context"

// RandomnessSource is one external randomness request. The engine never
// generates its own draw entropy; it only consumes a source's seed
// marker, resolution state, and raw value once readable. The same
// source instance must be presented at commit and again at reveal.
type RandomnessSource interface {
	// Reference identifies this request; stored at commit and matched
	// at reveal to prevent substitution of a different random draw.
	Reference() string

	// SeedSlot returns the slot/sequence number the request was seeded at.
	SeedSlot(ctx context.Context) (int64, error)

	// Resolved reports whether the random value is readable yet.
	Resolved(ctx context.Context) (bool, error)

	// Value returns the raw 32-byte random value once resolved.
	Value(ctx context.Context) ([]byte, error)
}

// SlotClock reports the current slot of the sequence the randomness
// source is seeded against.
type SlotClock interface {
	CurrentSlot(ctx context.Context) (int64, error)
}
