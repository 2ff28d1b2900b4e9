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

package broker

import (
	"github.com/kaiachai/hydration-node/core/events"
	"github.com/kaiachai/hydration-node/logging"
	"github.com/kaiachai/hydration-node/metrics"
)

// Subscriber receives events pushed through the broker.
type Subscriber interface {
	Push(evts ...events.Event)
	Types() []events.Type
}

type subscription struct {
	id int
	Subscriber
}

// Broker delivers events from the engines to the registered subscribers.
// Delivery is synchronous and in submission order: the engines run as a
// single deterministic sequence, so the broker must not reorder events.
type Broker struct {
	log *logging.Logger

	subs   map[int]subscription
	keys   []int
	tSubs  map[events.Type]map[int]struct{}
	lastID int
	seq    uint64
}

func New(log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Broker{
		log:   log,
		subs:  map[int]subscription{},
		tSubs: map[events.Type]map[int]struct{}{},
	}
}

// Subscribe registers a subscriber for the event types it declares and
// returns the subscription id to use for Unsubscribe.
func (b *Broker) Subscribe(s Subscriber) int {
	b.lastID++
	id := b.lastID
	b.subs[id] = subscription{id: id, Subscriber: s}
	b.keys = append(b.keys, id)

	for _, t := range s.Types() {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]struct{}{}
		}
		b.tSubs[t][id] = struct{}{}
	}

	if b.log.IsDebug() {
		b.log.Debug("subscriber registered",
			logging.Int("id", id),
			logging.Int("types", len(s.Types())),
		)
	}
	return id
}

// Unsubscribe removes the given subscription. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id int) {
	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, k := range b.keys {
		if k == id {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
	for _, ids := range b.tSubs {
		delete(ids, id)
	}
}

// Send assigns the event its sequence number and delivers it to every
// subscriber registered for its type (or for All), in registration order.
func (b *Broker) Send(event events.Event) {
	b.seq++
	event.SetSequenceID(b.seq)
	metrics.EventCounterInc(event.Type().String())

	for _, id := range b.keys {
		sub := b.subs[id]
		if b.wants(sub, event.Type()) {
			sub.Push(event)
		}
	}
}

// SendBatch delivers a batch of events sharing the same origin.
func (b *Broker) SendBatch(evts []events.Event) {
	for _, e := range evts {
		b.Send(e)
	}
}

func (b *Broker) wants(sub subscription, t events.Type) bool {
	if ids, ok := b.tSubs[events.All]; ok {
		if _, ok := ids[sub.id]; ok {
			return true
		}
	}
	ids, ok := b.tSubs[t]
	if !ok {
		return false
	}
	_, ok = ids[sub.id]
	return ok
}
