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

package media

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tagvault/tagvault-core/pkg/broker"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/helpers/syncutil"
	"github.com/tagvault/tagvault-core/pkg/metrics"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// DefaultListenBuffer is the broker subscription buffer used by Listen.
const DefaultListenBuffer = 32

// ListeningList owns a List and its results and keeps them current with
// the update stream. All access goes through its lock.
type ListeningList struct {
	list *List
	env  *Env
	mu   syncutil.Mutex
}

// NewListeningList builds a list over results. The list takes ownership of
// the results: nothing else may update them.
func NewListeningList(env *Env, fileServiceKey services.Key, results []*Result) *ListeningList {
	return &ListeningList{
		env:  env,
		list: NewList(env, fileServiceKey, results),
	}
}

// View runs fn with the list locked. fn must not keep the list.
func (ll *ListeningList) View(fn func(l *List)) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	fn(ll.list)
}

// AddResults adds results whose hashes the list does not hold yet and
// returns the accepted singletons.
func (ll *ListeningList) AddResults(results []*Result) []*Singleton {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	media := make([]Media, 0, len(results))
	for _, r := range results {
		if ll.list.hashes.Has(r.Hash()) {
			continue
		}
		media = append(media, NewSingleton(r))
	}
	return ll.list.AddMedia(media)
}

func (ll *ListeningList) resultsByHash() map[files.Hash]*Result {
	flat := ll.list.FlatMedia()
	out := make(map[files.Hash]*Result, len(flat))
	for _, s := range flat {
		out[s.Hash()] = s.Result()
	}
	return out
}

// ProcessContentUpdates applies each update once to every held result it
// names, then lets the list drop files deleted out of its view.
func (ll *ListeningList) ProcessContentUpdates(updates content.Updates) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	byHash := ll.resultsByHash()
	for _, key := range sortedServiceKeys(updates) {
		for _, u := range updates[key] {
			ll.applyToResults(byHash, key, u)
		}
	}
	ll.list.ProcessContentUpdates(updates)
}

func (ll *ListeningList) applyToResults(byHash map[files.Hash]*Result, key services.Key, u content.Update) {
	for _, h := range u.Hashes() {
		r, ok := byHash[h]
		if !ok {
			continue
		}
		if err := r.ProcessContentUpdate(ll.env.Registry, key, u); err != nil {
			if errors.Is(err, services.ErrDataMissing) {
				log.Debug().Err(err).
					Stringer("data_type", u.DataType()).
					Msg("skipping update for unknown service")
				metrics.ContentUpdatesTotal.WithLabelValues(u.DataType().String(), "missing").Inc()
				return
			}
			log.Error().Err(err).Str("hash", h.Hex()).Msg("failed to apply content update")
			continue
		}
	}
	metrics.ContentUpdatesTotal.WithLabelValues(u.DataType().String(), "applied").Inc()
}

// ProcessServiceUpdates applies service-wide updates to the held results
// and then to the list.
func (ll *ListeningList) ProcessServiceUpdates(updates content.ServiceUpdates) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	byHash := ll.resultsByHash()
	for _, key := range sortedServiceKeys(updates) {
		for _, u := range updates[key] {
			switch u.Action {
			case content.ServiceDeletePending:
				for _, r := range byHash {
					if err := r.DeletePending(ll.env.Registry, key); err != nil {
						log.Debug().Err(err).Msg("skipping delete pending for unknown service")
						break
					}
				}
			case content.ServiceReset:
				for _, r := range byHash {
					r.ResetService(key)
				}
			}
		}
	}
	ll.list.ProcessServiceUpdates(updates)
}

// NewTagDisplayRules dirties every tag cache the list holds.
func (ll *ListeningList) NewTagDisplayRules() {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.list.NewTagDisplayRules()
}

func (ll *ListeningList) handle(ev broker.Event) {
	switch ev.Kind {
	case broker.KindContentUpdates:
		ll.ProcessContentUpdates(ev.Content)
	case broker.KindServiceUpdates:
		ll.ProcessServiceUpdates(ev.Service)
	case broker.KindTagDisplayRulesChanged:
		ll.NewTagDisplayRules()
	}
}

// Listen subscribes to b and applies its events on one goroutine until ctx
// is done or the broker closes the subscription. The returned channel is
// closed when that goroutine exits.
func (ll *ListeningList) Listen(ctx context.Context, b *broker.Broker) <-chan struct{} {
	events, id := b.Subscribe(DefaultListenBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				ll.handle(ev)
			case <-ctx.Done():
				b.Unsubscribe(id)
				return
			}
		}
	}()
	return done
}
