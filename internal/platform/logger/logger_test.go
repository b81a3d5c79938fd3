package logger

import (
	"bytes"
	"context"
	"testing"

	kit "tiba/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":     zerolog.DebugLevel,
		" WARNING ": zerolog.WarnLevel,
		"warn":      zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"trace":     zerolog.TraceLevel,
		"":          zerolog.InfoLevel,
		"loud":      zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s want %s", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_SERVICE", "tiba-api")
	t.Setenv("LOG_CALLER", "yes")

	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || o.Service != "tiba-api" || !o.Caller {
		t.Fatalf("options = %+v", o)
	}
}

// the root is process wide so one test owns Init
func TestRootAndChildren(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Service: "tiba-api", Writer: &buf, Fields: map[string]string{"env": "test"}})
	Init(Options{Level: "error", Writer: &bytes.Buffer{}})

	Get().Debug().Msg("hidden")
	Named("workspace-loop").Info().Msg("loop started")

	ctx := WithRequest(context.Background(), "req-9", "ws-3")
	C(ctx).Info().Msg("render requested")
	C(WithRequest(context.Background(), "", "")).Warn().Msg("bare")

	out := buf.String()
	kit.MustContain(t, out, `"service":"tiba-api"`)
	kit.MustContain(t, out, `"env":"test"`)
	kit.MustContain(t, out, `"component":"workspace-loop"`)
	kit.MustContain(t, out, `"request_id":"req-9","workspace":"ws-3"`)
	kit.MustContain(t, out, `"message":"render requested"`)
	kit.MustContain(t, out, `"message":"bare"`)
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatalf("debug line logged at info: %s", out)
	}
}
