package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWaitPing(t *testing.T) {
	log := zerolog.Nop()
	refused := errors.New("connection refused")

	t.Run("ready after retries", func(t *testing.T) {
		calls := 0
		err := waitPing(context.Background(), PGConfig{ConnectRetries: 4}, log, func(ctx context.Context) error {
			calls++
			if _, ok := ctx.Deadline(); !ok {
				t.Fatalf("ping without deadline")
			}
			if calls < 3 {
				return refused
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Fatalf("err = %v after %d calls", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := waitPing(context.Background(), PGConfig{ConnectRetries: 2, PingTimeout: time.Second}, log, func(context.Context) error {
			calls++
			return refused
		})
		if !errors.Is(err, refused) || calls != 2 {
			t.Fatalf("err = %v after %d calls", err, calls)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := waitPing(ctx, PGConfig{}, log, func(context.Context) error {
			cancel()
			return refused
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	})
}
