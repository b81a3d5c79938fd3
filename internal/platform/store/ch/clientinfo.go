package ch

import (
	"os"
	"runtime"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"tiba/internal/core/version"
)

// clientInfo names this process in system.query_log so ledger writes can be traced back.
// role is the binary ("api", "cli"), tag a free deployment label.
func clientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	b := version.Info()
	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{"tiba", b.Version},
		{"role", role},
		{"tag", tag},
		{"commit", b.Commit},
		{"go", runtime.Version()},
		{"host", host},
	} {
		if v := strings.TrimSpace(p[1]); v != "" {
			info.Products = append(info.Products, struct{ Name, Version string }{p[0], v})
		}
	}
	return info
}
