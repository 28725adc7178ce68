package domain

import "sync"

// Subscription is a live feed of full, freshly-ordered project snapshots.
// The channel is closed when the feed ends. Unsubscribe releases the
// underlying listener and is safe to call more than once.
type Subscription struct {
	C    <-chan []Project
	stop func()
	once sync.Once
}

func NewSubscription(c <-chan []Project, stop func()) *Subscription {
	return &Subscription{C: c, stop: stop}
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}
