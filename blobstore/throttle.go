package blobstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig limits the traffic a ThrottledStore lets through.
type ThrottleConfig struct {
	// BytesPerSec caps the payload throughput of Put and Get. If 0,
	// unlimited.
	BytesPerSec int64

	// MaxInFlight caps the number of concurrent requests. If 0, unlimited.
	MaxInFlight int64
}

// ThrottledStore wraps a BlobStore with a byte-rate limiter and a
// concurrency limit, for remote stores shared with other clients.
type ThrottledStore struct {
	inner BlobStore
	io    *rate.Limiter       // nil if unlimited
	slots *semaphore.Weighted // nil if unlimited
}

// NewThrottledStore wraps inner. A zero config passes every call through.
func NewThrottledStore(inner BlobStore, cfg ThrottleConfig) *ThrottledStore {
	s := &ThrottledStore{inner: inner}

	if cfg.BytesPerSec > 0 {
		s.io = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), int(cfg.BytesPerSec))
	}

	if cfg.MaxInFlight > 0 {
		s.slots = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	return s
}

func (s *ThrottledStore) acquire(ctx context.Context) (func(), error) {
	if s.slots == nil {
		return func() {}, ctx.Err()
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	return func() { s.slots.Release(1) }, nil
}

// waitIO blocks until n bytes may pass. Payloads larger than the burst are
// charged in burst-sized chunks.
func (s *ThrottledStore) waitIO(ctx context.Context, n int) error {
	if s.io == nil {
		return nil
	}

	burst := s.io.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := s.io.WaitN(ctx, chunk); err != nil {
			return err
		}

		n -= chunk
	}

	return nil
}

// Put waits for the payload to fit the byte budget before writing.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.waitIO(ctx, len(data)); err != nil {
		return err
	}

	return s.inner.Put(ctx, name, data)
}

// Get charges the payload against the byte budget after reading it.
func (s *ThrottledStore) Get(ctx context.Context, name string) ([]byte, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.waitIO(ctx, len(data)); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return s.inner.Delete(ctx, name)
}

func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.inner.List(ctx, prefix)
}

var _ BlobStore = (*ThrottledStore)(nil)
