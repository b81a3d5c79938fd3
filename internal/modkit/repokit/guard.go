package repokit

import (
	"context"
	"fmt"
	"time"
)

// GuardTimeout bounds MustGuard when ctx has no deadline
const GuardTimeout = 10 * time.Second

// MustGuard panics when st reports an unreachable backend
func MustGuard(ctx context.Context, st interface{ Guard(context.Context) error }) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, GuardTimeout)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
