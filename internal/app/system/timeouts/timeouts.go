// internal/app/system/timeouts/timeouts.go
package timeouts

import "time"

// Central place for the per-operation DB deadlines so they stay consistent
// across handlers.

// Short covers single-document reads and writes.
func Short() time.Duration { return 5 * time.Second }

// Long covers listings and aggregations.
func Long() time.Duration { return 15 * time.Second }

// Ping is for health checks.
func Ping() time.Duration { return 2 * time.Second }
