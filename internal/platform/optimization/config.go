// Package optimization holds tunable concurrency parameters: channel
// buffer sizes and database pool limits, the latter scaled to the host's
// CPU count.
package optimization

import "runtime"

// Config holds tuned parameters for the broadcast channels and the
// database connection pool.
type Config struct {
	// BroadcastBuffer sizes each subscriber's channel in every
	// internal/broadcast.ChannelMap (invalidate/reconnect/online streams).
	BroadcastBuffer int

	// DBMaxConns bounds the pgxpool's open connections.
	DBMaxConns int32
	// DBMinConns keeps this many connections warm.
	DBMinConns int32
}

// DefaultConfig scales the database pool limits to the host's CPU count
// and uses a fixed broadcast buffer of 16, suited to a production
// deployment.
func DefaultConfig() *Config {
	numCPU := int32(runtime.NumCPU())
	return &Config{
		BroadcastBuffer: 16,
		DBMaxConns:      numCPU * 4,
		DBMinConns:      numCPU,
	}
}

// LowResourceConfig returns minimal settings suited to local development.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastBuffer: 4,
		DBMaxConns:      5,
		DBMinConns:      1,
	}
}
