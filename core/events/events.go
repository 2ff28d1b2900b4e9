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

package events

import (
	"context"
)

type Type int

const (
	// All is used by subscribers to receive every event, it has no
	// corresponding event payload.
	All Type = iota
	CodeRegisteredEvent
	CodeLinkedEvent
	ConvertedEvent
	ClaimedEvent
	RewardsUpdatedEvent
	LevelUpEvent
)

var eventNames = map[Type]string{
	All:                 "ALL",
	CodeRegisteredEvent: "CodeRegistered",
	CodeLinkedEvent:     "CodeLinked",
	ConvertedEvent:      "Converted",
	ClaimedEvent:        "Claimed",
	RewardsUpdatedEvent: "RewardsUpdated",
	LevelUpEvent:        "LevelUp",
}

func (t Type) String() string {
	name, ok := eventNames[t]
	if !ok {
		return "UNKNOWN"
	}
	return name
}

// Event is the base event interface type shared by every event going
// through the broker. The sequence ID is set once by the broker.
type Event interface {
	Type() Type
	Context() context.Context
	TraceID() string
	Sequence() uint64
	SetSequenceID(s uint64)
}

type traceIDKey struct{}

// NewTraceContext returns a copy of ctx carrying the trace ID events
// created from it will report.
func NewTraceContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func traceIDFromContext(ctx context.Context) string {
	v := ctx.Value(traceIDKey{})
	if v == nil {
		return ""
	}
	if tid, ok := v.(string); ok {
		return tid
	}
	return ""
}

// Base common denominator all event-bus events share.
type Base struct {
	ctx     context.Context
	traceID string
	seq     uint64
	et      Type
}

func newBase(ctx context.Context, t Type) *Base {
	return &Base{
		ctx:     ctx,
		traceID: traceIDFromContext(ctx),
		et:      t,
	}
}

func (b Base) Type() Type {
	return b.et
}

func (b Base) Context() context.Context {
	return b.ctx
}

func (b Base) TraceID() string {
	return b.traceID
}

func (b Base) Sequence() uint64 {
	return b.seq
}

func (b *Base) SetSequenceID(s uint64) {
	// sequence ID can only be set once
	if b.seq != 0 {
		return
	}
	b.seq = s
}
