// Package lifecycle holds shared start/stop conventions for long-lived components.
package lifecycle

import "time"

// DefaultTimeout bounds startup checks and graceful shutdown of managed components.
const DefaultTimeout = 10 * time.Second
