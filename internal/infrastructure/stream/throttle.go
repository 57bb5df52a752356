package stream

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// ThrottledReader paces reads against a shared token bucket so one client
// cannot saturate the disk or uplink. A nil Limiter passes reads through.
type ThrottledReader struct {
	io.Reader
	Limiter *rate.Limiter
	Ctx     context.Context
}

func (r *ThrottledReader) Read(p []byte) (int, error) {
	if r.Ctx != nil {
		select {
		case <-r.Ctx.Done():
			return 0, r.Ctx.Err()
		default:
		}
	}

	// Cap the read so a single call never exceeds the bucket burst.
	if r.Limiter != nil && r.Limiter.Burst() > 0 && len(p) > r.Limiter.Burst() {
		p = p[:r.Limiter.Burst()]
	}

	n, err := r.Reader.Read(p)
	if err != nil {
		return n, err
	}

	if r.Limiter != nil && n > 0 {
		ctx := r.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if err := r.Limiter.WaitN(ctx, n); err != nil {
			return n, err
		}
	}

	return n, nil
}

func (r *ThrottledReader) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
