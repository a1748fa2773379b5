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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagvault/tagvault-core/pkg/broker"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestListeningList_ContentUpdates(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	ll := NewListeningList(env, services.LocalFileKey, []*Result{
		testResult(1, withTags("series:a")),
		testResult(2, withTags("series:a")),
		testResult(3),
	})
	ll.View(func(l *List) { l.Collect(&Collect{Namespaces: []string{"series"}}) })

	ll.ProcessContentUpdates(content.Updates{
		services.LocalTagKey: {mappingUpdate(content.ActionAdd, "creator:x", hashOf(1), hashOf(3))},
	})

	ll.View(func(l *List) {
		media := l.SortedMedia()
		require.Len(t, media, 2)
		coll := media[0]
		assert.True(t, coll.TagsManager().HasTag("creator:x", tags.DisplayStorage), "collection merges child update")
		assert.True(t, media[1].TagsManager().HasTag("creator:x", tags.DisplayStorage))

		counts := CountMediaTags(media, services.LocalTagKey, tags.DisplayStorage)
		assert.Equal(t, 2, counts.Current["creator:x"], "each file updated once")
	})

	ll.ProcessContentUpdates(content.Updates{
		services.TrashKey: {filesUpdate(content.ActionDelete, hashOf(3))},
	})
	ll.View(func(l *List) {
		assert.Equal(t, 2, l.NumFiles())
	})
}

func TestListeningList_UnknownServiceIsSkipped(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	ll := NewListeningList(env, services.LocalFileKey, []*Result{testResult(1)})

	assert.NotPanics(t, func() {
		ll.ProcessContentUpdates(content.Updates{
			"retired service": {mappingUpdate(content.ActionAdd, "series:a", hashOf(1))},
		})
		ll.ProcessServiceUpdates(content.ServiceUpdates{
			"retired service": {{Action: content.ServiceDeletePending}},
		})
	})
	ll.View(func(l *List) {
		assert.False(t, l.SortedMedia()[0].TagsManager().HasTag("series:a", tags.DisplayStorage))
	})
}

func TestListeningList_ServiceUpdates(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	ll := NewListeningList(env, services.LocalFileKey, []*Result{testResult(1, withTags("series:a"))})
	ll.ProcessContentUpdates(content.Updates{
		services.LocalTagKey: {mappingUpdate(content.ActionPend, "series:b", hashOf(1))},
	})

	ll.ProcessServiceUpdates(content.ServiceUpdates{
		services.LocalTagKey: {{Action: content.ServiceDeletePending}},
	})
	ll.View(func(l *List) {
		tm := l.SortedMedia()[0].TagsManager()
		assert.Equal(t, 0, tm.Pending(services.LocalTagKey, tags.DisplayStorage).Cardinality())
		assert.True(t, tm.HasTag("series:a", tags.DisplayStorage))
	})

	ll.ProcessServiceUpdates(content.ServiceUpdates{
		services.LocalTagKey: {{Action: content.ServiceReset}},
	})
	ll.View(func(l *List) {
		assert.False(t, l.SortedMedia()[0].TagsManager().HasTag("series:a", tags.DisplayStorage))
	})
}

func TestListeningList_AddResults(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	ll := NewListeningList(env, services.LocalFileKey, []*Result{testResult(1)})

	accepted := ll.AddResults([]*Result{testResult(1), testResult(2), testResult(2)})
	require.Len(t, accepted, 1)
	assert.Equal(t, hashOf(2), accepted[0].Hash())
	ll.View(func(l *List) { assert.Equal(t, 2, l.NumFiles()) })
}

func TestListeningList_Listen(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan broker.Event)
	b := broker.NewBroker(ctx, source)

	env, _ := testEnv()
	ll := NewListeningList(env, services.LocalFileKey, []*Result{testResult(1), testResult(2)})
	done := ll.Listen(ctx, b)
	b.Start()

	source <- broker.ContentEvent(content.Updates{
		services.LocalTagKey: {mappingUpdate(content.ActionAdd, "series:a", hashOf(1))},
	})
	source <- broker.ContentEvent(content.Updates{
		services.TrashKey: {filesUpdate(content.ActionDelete, hashOf(2))},
	})
	source <- broker.TagDisplayRulesEvent()

	assert.Eventually(t, func() bool {
		var ok bool
		ll.View(func(l *List) {
			ok = l.NumFiles() == 1 &&
				l.SortedMedia()[0].TagsManager().HasTag("series:a", tags.DisplayStorage)
		})
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	<-b.Done()
}

func TestListeningList_StopsWhenBrokerCloses(t *testing.T) {
	t.Parallel()

	source := make(chan broker.Event)
	b := broker.NewBroker(context.Background(), source)
	env, _ := testEnv()
	ll := NewListeningList(env, services.LocalFileKey, nil)
	done := ll.Listen(context.Background(), b)
	b.Start()

	close(source)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	<-b.Done()
}
