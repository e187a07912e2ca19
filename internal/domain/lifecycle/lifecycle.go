// Package lifecycle holds shared start/stop constants for managed components.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown of managed resources
// (HTTP server drain, DB pool close).
const DefaultTimeout = 10 * time.Second
