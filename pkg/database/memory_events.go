package database

import (
	"context"
	"sync"

	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

const memoryStreamBuffer = 64

// memoryEvents fans published events out to listeners of a channel.
type memoryEvents struct {
	lock sync.Mutex
	subs map[string]map[*memoryStream]bool
}

type memoryStream struct {
	events chan *structs.Event
	done   chan struct{}
	once   sync.Once
	unsub  func()
}

// Listen returns a stream of events published to the channel with Publish.
func (m *Memory) Listen(ctx context.Context, channel string) (EventStream, error) {
	m.events.lock.Lock()
	defer m.events.lock.Unlock()

	if m.events.subs == nil {
		m.events.subs = map[string]map[*memoryStream]bool{}
	}
	if _, ok := m.events.subs[channel]; !ok {
		m.events.subs[channel] = map[*memoryStream]bool{}
	}

	s := &memoryStream{
		events: make(chan *structs.Event, memoryStreamBuffer),
		done:   make(chan struct{}),
	}
	s.unsub = func() {
		m.events.lock.Lock()
		defer m.events.lock.Unlock()
		delete(m.events.subs[channel], s)
	}
	m.events.subs[channel][s] = true
	return s, nil
}

// Publish hands the event to every current listener, waiting on any that are full.
func (m *Memory) Publish(ctx context.Context, channel string, evt *structs.Event) error {
	m.events.lock.Lock()
	streams := make([]*memoryStream, 0, len(m.events.subs[channel]))
	for s := range m.events.subs[channel] {
		streams = append(streams, s)
	}
	m.events.lock.Unlock()

	for _, s := range streams {
		select {
		case s.events <- evt:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *memoryStream) Next(ctx context.Context) (*structs.Event, error) {
	select {
	case evt := <-s.events:
		return evt, nil
	case <-s.done:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memoryStream) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.unsub()
	})
	return nil
}
