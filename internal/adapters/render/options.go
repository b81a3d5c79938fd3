package render

import "tiba/internal/platform/config"

// FromConfig reads RENDER_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("RENDER_")
	return Options{
		BaseURL:    rc.MayString("BASE_URL", baseURLDefault),
		UserAgent:  rc.MayString("UA", defaultUA),
		Timeout:    rc.MayDuration("TIMEOUT", defaultTimeout),
		RatePerSec: rc.MayFloat64("RPS", 0),
		Burst:      rc.MayInt("BURST", 4),
	}
}
