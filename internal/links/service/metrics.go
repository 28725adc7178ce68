package service

import (
	"sync/atomic"

	"github.com/taha-association/links-backend/internal/links/domain"
)

// Metrics tracks remote store usage and fallback activity. RemoteErrors
// counts transport failures only; domain errors such as a missing id are
// expected answers, not store trouble.
type Metrics struct {
	RemoteCalls  int64 `json:"remoteCalls"`
	RemoteErrors int64 `json:"remoteErrors"`
	Fallbacks    int64 `json:"fallbacks"`
	LocalServed  int64 `json:"localServed"`
}

type counters struct {
	remoteCalls  int64
	remoteErrors int64
	fallbacks    int64
	localServed  int64
}

func (c *counters) recordRemoteCall(err error) {
	atomic.AddInt64(&c.remoteCalls, 1)
	if domain.IsTransport(err) {
		atomic.AddInt64(&c.remoteErrors, 1)
	}
}

func (c *counters) recordFallback() {
	atomic.AddInt64(&c.fallbacks, 1)
}

func (c *counters) recordLocalServed() {
	atomic.AddInt64(&c.localServed, 1)
}

// snapshot returns a consistent copy of the current counters.
func (c *counters) snapshot() Metrics {
	return Metrics{
		RemoteCalls:  atomic.LoadInt64(&c.remoteCalls),
		RemoteErrors: atomic.LoadInt64(&c.remoteErrors),
		Fallbacks:    atomic.LoadInt64(&c.fallbacks),
		LocalServed:  atomic.LoadInt64(&c.localServed),
	}
}

// reset zeroes all counters (useful for testing).
func (c *counters) reset() {
	atomic.StoreInt64(&c.remoteCalls, 0)
	atomic.StoreInt64(&c.remoteErrors, 0)
	atomic.StoreInt64(&c.fallbacks, 0)
	atomic.StoreInt64(&c.localServed, 0)
}
