package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	tests := map[string]string{
		"select 1": "select 1",
		"\n insert into render_ledger\n\t(request_id, event)\r\n values ($1,  $2)\n": "insert into render_ledger (request_id, event) values ($1, $2)",
		"": "",
	}
	for in, want := range tests {
		if got := compact(in); got != want {
			t.Fatalf("compact(%q) = %q want %q", in, got, want)
		}
	}
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	type line struct {
		Level     string  `json:"level"`
		Component string  `json:"component"`
		ElapsedMS float64 `json:"elapsed_ms"`
		Slow      bool    `json:"slow"`
		SQL       string  `json:"sql"`
		Args      []any   `json:"args"`
		Error     string  `json:"error"`
		Message   string  `json:"message"`
	}

	for _, slow := range []bool{false, true} {
		buf.Reset()
		tr.OnQuery(context.Background(), QueryEvent{
			SQL:       "select\n  count(*) from render_ledger where workspace_id = $1",
			Args:      []any{"ws-1"},
			ElapsedUS: 2500,
			Err:       errors.New("conn reset"),
			Slow:      slow,
		})

		var got line
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("decode %q: %v", buf.String(), err)
		}
		want := "info"
		if slow {
			want = "warn"
		}
		if got.Level != want || got.Slow != slow {
			t.Fatalf("slow=%v logged at %q", slow, got.Level)
		}
		if got.Component != "pg" || got.Message != "pg query" || got.ElapsedMS != 2.5 {
			t.Fatalf("line = %+v", got)
		}
		if got.SQL != "select count(*) from render_ledger where workspace_id = $1" || len(got.Args) != 1 || got.Error != "conn reset" {
			t.Fatalf("line = %+v", got)
		}
	}
}
