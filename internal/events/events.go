// Package events provides a synchronous, typed publish/subscribe dispatcher.
//
// Topics are an enumerated Kind rather than free-form strings. A Dispatcher
// delivers each published value to the handlers registered for its kind, in
// subscription order, and then to the catch-all handlers. Delivery happens on
// the publisher's goroutine before Publish returns.
package events

import (
	"log/slog"
	"strings"
)

// Kind identifies an event topic.
type Kind int

const (
	IntervalsAdd Kind = iota + 1
	IntervalsRemove
	IntervalsRemoveAll
	IntervalsUpdate
	IntervalsDragStart
	IntervalsDragged
	IntervalsDragEnd
	IntervalsMouseEnter
	IntervalsMouseLeave
	IntervalsClick
	ZoomUpdate
	ZoomChange
)

var kindNames = map[Kind]string{
	IntervalsAdd:        "intervals.add",
	IntervalsRemove:     "intervals.remove",
	IntervalsRemoveAll:  "intervals.remove_all",
	IntervalsUpdate:     "intervals.update",
	IntervalsDragStart:  "intervals.dragstart",
	IntervalsDragged:    "intervals.dragged",
	IntervalsDragEnd:    "intervals.dragend",
	IntervalsMouseEnter: "intervals.mouseenter",
	IntervalsMouseLeave: "intervals.mouseleave",
	IntervalsClick:      "intervals.click",
	ZoomUpdate:          "zoom.update",
	ZoomChange:          "zoom.change",
}

// String returns the dotted topic name, e.g. "intervals.add".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "?"
}

// Family returns the topic prefix ("intervals" or "zoom").
func (k Kind) Family() string {
	name := k.String()
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// ParseKind maps a dotted topic name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

type subscription[E any] struct {
	id int
	fn func(E)
}

// Dispatcher fans published values out to subscribers. The zero value is not
// usable; create one with NewDispatcher. A Dispatcher is not safe for
// concurrent use: all publishing happens on the host's event loop.
type Dispatcher[E any] struct {
	byKind map[Kind][]subscription[E]
	all    []subscription[E]
	nextID int
	logger *slog.Logger
}

// NewDispatcher creates an empty dispatcher. A nil logger means slog.Default().
func NewDispatcher[E any](logger *slog.Logger) *Dispatcher[E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher[E]{
		byKind: make(map[Kind][]subscription[E]),
		logger: logger,
	}
}

// Subscribe registers fn for a single kind. The returned function removes the
// subscription; calling it more than once is harmless.
func (d *Dispatcher[E]) Subscribe(kind Kind, fn func(E)) (cancel func()) {
	d.nextID++
	id := d.nextID
	d.byKind[kind] = append(d.byKind[kind], subscription[E]{id: id, fn: fn})
	return func() {
		d.byKind[kind] = without(d.byKind[kind], id)
		if len(d.byKind[kind]) == 0 {
			delete(d.byKind, kind)
		}
	}
}

// SubscribeAll registers fn for every kind.
func (d *Dispatcher[E]) SubscribeAll(fn func(E)) (cancel func()) {
	d.nextID++
	id := d.nextID
	d.all = append(d.all, subscription[E]{id: id, fn: fn})
	return func() {
		d.all = without(d.all, id)
	}
}

// Publish delivers e to the subscribers of kind, then to catch-all
// subscribers. Handlers may subscribe, unsubscribe or publish re-entrantly;
// this call iterates over the subscriber lists as they were on entry.
func (d *Dispatcher[E]) Publish(kind Kind, e E) {
	specific := d.byKind[kind]
	all := d.all
	d.logger.Debug("publish event", "kind", kind.String(), "subscribers", len(specific)+len(all))
	for _, s := range specific {
		s.fn(e)
	}
	for _, s := range all {
		s.fn(e)
	}
}

// Subscribers returns the number of handlers that would receive kind.
func (d *Dispatcher[E]) Subscribers(kind Kind) int {
	return len(d.byKind[kind]) + len(d.all)
}

// without returns a fresh slice so that in-flight Publish iterations keep
// their own view.
func without[E any](subs []subscription[E], id int) []subscription[E] {
	out := make([]subscription[E], 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
