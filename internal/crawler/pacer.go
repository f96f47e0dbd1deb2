package crawler

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Delay is a clamped Gaussian distribution of inter-request delays.
type Delay struct {
	Mean   time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Pacer spaces requests.
type Pacer struct {
	delay   Delay
	limiter *rate.Limiter
	normal  func() float64
	sleep   func(ctx context.Context, d time.Duration) error
}

// PacerOption configures a Pacer.
type PacerOption func(*Pacer)

// WithRateFloor caps the request rate at one request per interval,
// regardless of the sampled delay. Non-positive intervals disable the cap.
func WithRateFloor(interval time.Duration) PacerOption {
	return func(p *Pacer) {
		if interval > 0 {
			p.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithNormalSource replaces the standard normal sample source.
func WithNormalSource(fn func() float64) PacerOption {
	return func(p *Pacer) {
		p.normal = fn
	}
}

// WithSleeper replaces the function used to sleep.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) PacerOption {
	return func(p *Pacer) {
		p.sleep = fn
	}
}

// NewPacer creates a Pacer for delay.
func NewPacer(delay Delay, opts ...PacerOption) *Pacer {
	p := &Pacer{
		delay:  delay,
		normal: rand.NormFloat64,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next samples the next delay.
func (p *Pacer) Next() time.Duration {
	d := p.delay.Mean + time.Duration(p.normal()*float64(p.delay.StdDev))
	if p.delay.Max > 0 {
		d = min(d, p.delay.Max)
	}
	return max(d, p.delay.Min, 0)
}

// Wait blocks for the next delay and the rate floor.
func (p *Pacer) Wait(ctx context.Context) (time.Duration, error) {
	d := p.Next()
	if err := p.sleep(ctx, d); err != nil {
		return 0, err
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return d, err
		}
	}
	return d, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
