package sources

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAdmitEvery allows five fetches per rolling second.
const DefaultAdmitEvery = 200 * time.Millisecond

// Limiter gates outbound fetches for one source kind. It is safe for
// concurrent use and meant to be shared by every request in the process.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter admits one fetch per interval with no bursting.
func NewLimiter(every time.Duration) *Limiter {
	if every <= 0 {
		every = DefaultAdmitEvery
	}
	return &Limiter{lim: rate.NewLimiter(rate.Every(every), 1)}
}

// Wait blocks until a fetch is admitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}

// Limiters holds one limiter per source kind.
type Limiters struct {
	News   *Limiter
	Social *Limiter
}

// NewLimiters builds the process-wide limiter set.
func NewLimiters(every time.Duration) Limiters {
	return Limiters{News: NewLimiter(every), Social: NewLimiter(every)}
}
