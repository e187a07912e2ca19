// Package clock provides the wall-clock implementation of service.Clock.
package clock

import (
	"time"

	"taskboard/internal/domain/service"
)

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() service.Clock {
	return service.ClockFunc(time.Now)
}
