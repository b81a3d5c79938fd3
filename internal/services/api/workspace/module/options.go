package module

import (
	"time"

	"tiba/internal/platform/config"
	"tiba/internal/services/api/workspace/service"
)

// Ledger targets
const (
	LedgerOff  = "off"
	LedgerPG   = "pg"
	LedgerCH   = "ch"
	LedgerBoth = "both"
)

// Options controls workspace lifetimes, uploads and the render ledger
type Options struct {
	Service      service.Config
	MaxUploadMB  int
	Ledger       string
	EnsureLedger bool
}

// FromConfig reads WORKSPACE_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	wc := cfg.Prefix("WORKSPACE_")
	return Options{
		Service: service.Config{
			MaxWorkspaces:  wc.MayInt("MAX", 256),
			IdleTTL:        wc.MayDuration("IDLE_TTL", 2*time.Hour),
			SweepEvery:     wc.MayDuration("SWEEP_EVERY", time.Minute),
			InboxSize:      wc.MayInt("INBOX", 16),
			RenderTimeout:  wc.MayDuration("RENDER_TIMEOUT", 2*time.Minute),
			DatasetTimeout: wc.MayDuration("DATASET_TIMEOUT", time.Minute),
			LedgerTimeout:  wc.MayDuration("LEDGER_TIMEOUT", 5*time.Second),
			ArtifactBase:   cfg.Prefix("RENDER_").MayString("BASE_URL", "http://127.0.0.1:8000/"),
		},
		MaxUploadMB:  wc.MayInt("MAX_UPLOAD_MB", 32),
		Ledger:       wc.MayEnum("LEDGER", LedgerOff, LedgerOff, LedgerPG, LedgerCH, LedgerBoth),
		EnsureLedger: wc.MayBool("LEDGER_ENSURE", true),
	}
}
