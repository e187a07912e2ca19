package service

import "time"

// Clock abstracts wall-clock reads so every expiry comparison in the session
// lifecycle runs against an injectable now(). Tests substitute a fixed or
// steppable clock to make boundary checks deterministic.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}
