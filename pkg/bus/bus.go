// Package bus implements the single-producer, multi-subscriber event
// fanout described in spec.md 4.D: every phase transition the dispatcher
// publishes reaches every current subscriber, in publication order, with
// no record silently dropped - a slow subscriber is disconnected
// instead.
package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSlowSubscriber is the disconnect reason delivered to a subscriber
// whose buffer exceeded the bus's high-water mark.
var ErrSlowSubscriber = errors.New("bus: subscriber buffer exceeded high-water mark, disconnected")

// Record is one state-change event, as published by the dispatcher.
type Record struct {
	Job    string
	Status string // "RUNNING" or "STOPPED"
	Time   time.Time
}

// DefaultWatermark is the default per-subscriber buffer high-water mark
// before the slow-consumer policy kicks in.
const DefaultWatermark = 1024

// Bus is the event fanout. Publish is expected to be called only from
// the single dispatch loop (spec.md's "single-producer" requirement);
// Subscribe/Unsubscribe may be called concurrently from socket-frontend
// goroutines.
type Bus struct {
	mu        sync.Mutex
	subs      map[uuid.UUID]*Subscription
	watermark int
}

// New creates a bus with the given per-subscriber high-water mark. A
// watermark <= 0 selects DefaultWatermark.
func New(watermark int) *Bus {
	if watermark <= 0 {
		watermark = DefaultWatermark
	}
	return &Bus{
		subs:      make(map[uuid.UUID]*Subscription),
		watermark: watermark,
	}
}

// Subscription is a single subscriber's handle. Records are pulled one
// at a time with Recv, which blocks until one is available, the
// subscription is closed, or the context is cancelled.
type Subscription struct {
	id         uuid.UUID
	bus        *Bus
	nameFilter string

	mu    sync.Mutex
	queue []Record

	signal   chan struct{}
	closedCh chan struct{}
	closeErr error
	closeOne sync.Once
}

// Subscribe registers a new subscriber. If nameFilter is non-empty, only
// records for that job are delivered; otherwise all records are.
func (b *Bus) Subscribe(nameFilter string) *Subscription {
	sub := &Subscription{
		id:         uuid.New(),
		bus:        b,
		nameFilter: nameFilter,
		signal:     make(chan struct{}, 1),
		closedCh:   make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	return sub
}

// Publish delivers rec to every subscriber whose filter matches, in the
// order Publish is called. Not safe to call concurrently with itself -
// callers (the dispatch loop) are expected to already be serialized.
func (b *Bus) Publish(rec Record) {
	b.mu.Lock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		targets = append(targets, s)
	}
	b.mu.Unlock()

	for _, s := range targets {
		if s.nameFilter != "" && s.nameFilter != rec.Job {
			continue
		}
		s.deliver(rec, b.watermark, b)
	}
}

// Unsubscribe removes sub from the bus. Idempotent: unsubscribing twice,
// or unsubscribing a subscriber the bus already disconnected, is a
// no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.remove(sub)
	sub.closeOne.Do(func() {
		close(sub.closedCh)
	})
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()
}

func (s *Subscription) deliver(rec Record, watermark int, b *Bus) {
	s.mu.Lock()
	select {
	case <-s.closedCh:
		s.mu.Unlock()
		return
	default:
	}
	s.queue = append(s.queue, rec)
	overflow := len(s.queue) > watermark
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}

	if overflow {
		b.remove(s)
		s.closeOne.Do(func() {
			s.mu.Lock()
			s.queue = nil
			s.mu.Unlock()
			s.closeErr = ErrSlowSubscriber
			close(s.closedCh)
		})
	}
}

// Recv blocks until a record is available, returning it in publication
// order. It returns an error once the subscription is closed (via
// Unsubscribe, slow-consumer disconnect, or ctx being cancelled);
// ErrSlowSubscriber distinguishes the disconnect case.
func (s *Subscription) Recv(ctx context.Context) (Record, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			rec := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return rec, nil
		}
		s.mu.Unlock()

		select {
		case <-s.signal:
			continue
		case <-s.closedCh:
			if s.closeErr != nil {
				return Record{}, s.closeErr
			}
			return Record{}, context.Canceled
		case <-ctx.Done():
			return Record{}, ctx.Err()
		}
	}
}
