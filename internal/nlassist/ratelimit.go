package nlassist

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Client with a process-local token bucket. The
// teacher's features/model/middleware.AdaptiveRateLimiter coordinates a
// shared tokens-per-minute budget across a fleet of worker processes via
// a Pulse replicated map (rmap) and backs off adaptively on provider
// rate-limit errors; Waffle Iron is a single desktop process talking to
// one provider account, so there is no fleet to coordinate across and
// no AIMD feedback loop worth the complexity (see DESIGN.md). A plain
// golang.org/x/time/rate.Limiter sized to the provider's published
// requests-per-minute limit is the whole of what a single process needs.
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a limiter admitting up to requestsPerMinute
// Propose calls per minute, bursting up to burst requests.
func NewRateLimited(next Client, requestsPerMinute float64, burst int) *RateLimited {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst),
	}
}

// Propose blocks until the limiter admits the call, then delegates to the
// wrapped Client.
func (r *RateLimited) Propose(ctx context.Context, req Request) (*Proposal, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Propose(ctx, req)
}
