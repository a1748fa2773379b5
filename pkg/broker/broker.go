// TagVault Core
// Copyright (c) 2026 The TagVault Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of TagVault Core.
//
// TagVault Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TagVault Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TagVault Core.  If not, see <http://www.gnu.org/licenses/>.

// Package broker fans out content and service update events to the live
// media lists that hold affected results.
package broker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/helpers/syncutil"
)

type Kind int

const (
	KindContentUpdates Kind = iota
	KindServiceUpdates
	KindTagDisplayRulesChanged
)

func (k Kind) String() string {
	switch k {
	case KindContentUpdates:
		return "content_updates"
	case KindServiceUpdates:
		return "service_updates"
	case KindTagDisplayRulesChanged:
		return "tag_display_rules_changed"
	default:
		return "unknown"
	}
}

// Event is one batch of updates. Only the field matching Kind is set.
type Event struct {
	Content content.Updates
	Service content.ServiceUpdates
	Kind    Kind
}

func ContentEvent(updates content.Updates) Event {
	return Event{Kind: KindContentUpdates, Content: updates}
}

func ServiceEvent(updates content.ServiceUpdates) Event {
	return Event{Kind: KindServiceUpdates, Service: updates}
}

func TagDisplayRulesEvent() Event {
	return Event{Kind: KindTagDisplayRulesChanged}
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
}

func (s *subscriber) cancel() {
	s.once.Do(func() { close(s.done) })
}

// Broker manages event subscriptions and broadcasts each event to all
// subscribers in source order.
//
// Lists reduce over the update stream, so events are never dropped: a full
// subscriber channel blocks the broadcast until the subscriber reads,
// unsubscribes or the broker context ends.
type Broker struct {
	ctx         context.Context
	source      <-chan Event
	subscribers map[int]*subscriber
	// cancels mirrors subscribers under its own lock so a blocked broadcast
	// can always be released.
	cancels  map[int]*subscriber
	stopped  chan struct{}
	mu       syncutil.RWMutex
	cancelMu syncutil.Mutex
	nextID   int
}

// NewBroker creates a broker that reads from source once Start is called.
func NewBroker(ctx context.Context, source <-chan Event) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]*subscriber),
		cancels:     make(map[int]*subscriber),
		stopped:     make(chan struct{}),
		nextID:      0,
	}
}

// Start begins the broadcast loop in a goroutine. When the source channel
// closes or the context is cancelled, all subscriber channels are closed.
func (b *Broker) Start() {
	go func() {
		defer close(b.stopped)
		for {
			select {
			case ev, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(ev)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
}

// Done is closed once the broadcast loop started by Start has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.stopped
}

func (b *Broker) broadcast(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		select {
		case sub.ch <- ev:
			continue
		default:
		}

		log.Debug().
			Int("subscriber_id", id).
			Stringer("kind", ev.Kind).
			Msg("subscriber channel full, waiting")

		select {
		case sub.ch <- ev:
		case <-sub.done:
		case <-b.ctx.Done():
			return
		}
	}
}

// Subscribe registers a new subscriber. bufferSize is how many events can be
// queued before the broadcast waits on this subscriber.
//
// Returns the event channel and an ID for Unsubscribe.
func (b *Broker) Subscribe(bufferSize int) (events <-chan Event, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	sub := &subscriber{
		ch:   make(chan Event, bufferSize),
		done: make(chan struct{}),
	}
	b.subscribers[id] = sub
	b.cancelMu.Lock()
	b.cancels[id] = sub
	b.cancelMu.Unlock()

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Msg("new subscriber registered")

	events = sub.ch
	return events, id
}

// Unsubscribe removes a subscription and closes its channel. It is safe to
// call more than once and from the subscriber's own goroutine.
func (b *Broker) Unsubscribe(id int) {
	b.cancelMu.Lock()
	sub, ok := b.cancels[id]
	delete(b.cancels, id)
	b.cancelMu.Unlock()
	if !ok {
		return
	}
	// release a broadcast blocked on this subscriber before taking the lock
	sub.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
		log.Debug().Int("subscriber_id", id).Msg("subscriber unsubscribed")
	}
}

// Stop closes all subscriber channels.
func (b *Broker) Stop() {
	b.closeAllSubscribers()
}

func (b *Broker) closeAllSubscribers() {
	b.cancelMu.Lock()
	for id, sub := range b.cancels {
		sub.cancel()
		delete(b.cancels, id)
	}
	b.cancelMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	log.Debug().Msg("broker: all subscribers closed")
}
