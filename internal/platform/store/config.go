package store

import "time"

// Config selects and configures the backends
type Config struct {
	// AppName is reported to clickhouse as the client role
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop, default 6
	ConnectRetries int
	// PingTimeout bounds each boot ping, default 3s
	PingTimeout time.Duration
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string
	// Tag is appended to the client name reported to the server
	Tag string
}
