package testhelpers

import "context"

// FakeRandomnessSource is a scriptable randomness request for tests. It
// behaves like an oracle account: seeded at a slot, unresolved until
// told otherwise, then yielding a fixed 32-byte value.
type FakeRandomnessSource struct {
	Ref        string
	Slot       int64
	IsResolved bool
	Entropy    []byte

	SeedSlotErr error
	ResolvedErr error
	ValueErr    error
}

func (f *FakeRandomnessSource) Reference() string {
	return f.Ref
}

func (f *FakeRandomnessSource) SeedSlot(ctx context.Context) (int64, error) {
	return f.Slot, f.SeedSlotErr
}

func (f *FakeRandomnessSource) Resolved(ctx context.Context) (bool, error) {
	return f.IsResolved, f.ResolvedErr
}

func (f *FakeRandomnessSource) Value(ctx context.Context) ([]byte, error) {
	if f.ValueErr != nil {
		return nil, f.ValueErr
	}
	return f.Entropy, nil
}
