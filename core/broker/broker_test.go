// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package broker_test

import (
	"context"
	"testing"

	"github.com/kaiachai/hydration-node/core/broker"
	"github.com/kaiachai/hydration-node/core/events"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subStub struct {
	types []events.Type
	recv  []events.Event
}

func (s *subStub) Push(evts ...events.Event) {
	s.recv = append(s.recv, evts...)
}

func (s *subStub) Types() []events.Type {
	return s.types
}

func newBroker() *broker.Broker {
	return broker.New(logging.NewTestLogger(), broker.NewDefaultConfig())
}

func TestBroker(t *testing.T) {
	ctx := context.Background()

	t.Run("events reach subscribers of their type", func(t *testing.T) {
		b := newBroker()
		sub := &subStub{types: []events.Type{events.CodeRegisteredEvent}}
		b.Subscribe(sub)

		b.Send(events.NewCodeRegisteredEvent(ctx, "ABC123", "alice"))
		b.Send(events.NewLevelUpEvent(ctx, "alice", types.LevelTier1))

		require.Len(t, sub.recv, 1)
		assert.Equal(t, events.CodeRegisteredEvent, sub.recv[0].Type())
	})

	t.Run("all subscribers receive everything", func(t *testing.T) {
		b := newBroker()
		sub := &subStub{types: []events.Type{events.All}}
		b.Subscribe(sub)

		b.Send(events.NewCodeRegisteredEvent(ctx, "ABC123", "alice"))
		b.Send(events.NewLevelUpEvent(ctx, "alice", types.LevelTier1))

		require.Len(t, sub.recv, 2)
	})

	t.Run("sequence numbers increase with every event", func(t *testing.T) {
		b := newBroker()
		sub := &subStub{types: []events.Type{events.All}}
		b.Subscribe(sub)

		b.SendBatch([]events.Event{
			events.NewCodeRegisteredEvent(ctx, "ABC123", "alice"),
			events.NewCodeLinkedEvent(ctx, "bob", "ABC123", "alice"),
		})

		require.Len(t, sub.recv, 2)
		assert.Equal(t, uint64(1), sub.recv[0].Sequence())
		assert.Equal(t, uint64(2), sub.recv[1].Sequence())
	})

	t.Run("delivery follows registration order", func(t *testing.T) {
		b := newBroker()
		order := []int{}
		first := &orderedSub{order: &order, id: 1}
		second := &orderedSub{order: &order, id: 2}
		b.Subscribe(first)
		b.Subscribe(second)

		b.Send(events.NewLevelUpEvent(ctx, "alice", types.LevelTier1))

		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("unsubscribed subscribers stop receiving", func(t *testing.T) {
		b := newBroker()
		sub := &subStub{types: []events.Type{events.All}}
		id := b.Subscribe(sub)
		b.Unsubscribe(id)

		b.Send(events.NewLevelUpEvent(ctx, "alice", types.LevelTier1))

		assert.Empty(t, sub.recv)
	})
}

type orderedSub struct {
	order *[]int
	id    int
}

func (s *orderedSub) Push(...events.Event) {
	*s.order = append(*s.order, s.id)
}

func (s *orderedSub) Types() []events.Type {
	return []events.Type{events.All}
}
