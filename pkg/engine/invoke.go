package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/candidhq/candid/pkg/domain"
)

// DefaultAgentTimeout bounds a single capability agent call.
const DefaultAgentTimeout = 30 * time.Second

// invokeAgent runs one capability call under the engine's uniform policy:
// a per-attempt deadline, one retry for transient failures, none for
// permanent ones, and a deterministic fallback when attempts are exhausted.
// The returned string is never empty and the call never fails the stage.
func invokeAgent(ctx context.Context, logger *slog.Logger, agent string, timeout time.Duration, fallback string, call func(context.Context) (string, error)) string {
	if timeout <= 0 {
		timeout = DefaultAgentTimeout
	}

	attempt := func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return call(callCtx)
	}

	out, err := attempt()
	if err == nil && out != "" {
		return out
	}
	if err == nil {
		err = errors.New("agent returned empty output")
	}

	if domain.IsTransient(err) {
		logger.Warn("agent call failed, retrying once", "agent", agent, "err", err)
		out, err = attempt()
		if err == nil && out != "" {
			return out
		}
	}

	logger.Warn("agent call failed, using fallback", "agent", agent, "err", err)
	return fallback
}
