package module

import (
	"time"

	"tiba/internal/platform/config"
	"tiba/internal/services/api/compare/service"
)

// Options controls compare session lifetimes and uploads
type Options struct {
	Service     service.Config
	MaxUploadMB int
}

// FromConfig reads COMPARE_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	cc := cfg.Prefix("COMPARE_")
	return Options{
		Service: service.Config{
			MaxSessions: cc.MayInt("MAX", 64),
			IdleTTL:     cc.MayDuration("IDLE_TTL", 2*time.Hour),
			SweepEvery:  cc.MayDuration("SWEEP_EVERY", time.Minute),
			Timeout:     cc.MayDuration("TIMEOUT", 5*time.Minute),
		},
		MaxUploadMB: cc.MayInt("MAX_UPLOAD_MB", 32),
	}
}
