// Package modkit provides module wiring and core deps
package modkit

import (
	"tiba/internal/modkit/repokit"
	"tiba/internal/platform/config"
	"tiba/internal/platform/logger"
	"tiba/internal/platform/store"
)

// Deps are handed to every module builder
// PG and CH stay nil unless their store is enabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.Queryer
	CH  store.Clickhouse
}
