// Package evented provides containers that emit signals around every
// mutation.
package evented

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"

	"github.com/delaneyj/slotparty/pkg/signals"
)

var ErrKeyNotFound = errors.New("key not found")

// MapEvents are the signals of a Map. Every signal carries the key as its
// first argument.
type MapEvents[K comparable, V any] struct {
	*signals.Group

	Adding   signals.Instance1[K]
	Added    signals.Instance2[K, V]
	Changing signals.Instance1[K]
	Changed  signals.Instance3[K, V, V] // key, old, new
	Removing signals.Instance1[K]
	Removed  signals.Instance2[K, V]
}

func newMapEvents[K comparable, V any]() *MapEvents[K, V] {
	e := &MapEvents[K, V]{
		Adding:   signals.NewInstance1[K]("adding"),
		Added:    signals.NewInstance2[K, V]("added"),
		Changing: signals.NewInstance1[K]("changing"),
		Changed:  signals.NewInstance3[K, V, V]("changed"),
		Removing: signals.NewInstance1[K]("removing"),
		Removed:  signals.NewInstance2[K, V]("removed"),
	}
	e.Group = signals.NewGroup("events", map[string]*signals.SignalInstance{
		"adding":   e.Adding.SignalInstance,
		"added":    e.Added.SignalInstance,
		"changing": e.Changing.SignalInstance,
		"changed":  e.Changed.SignalInstance,
		"removing": e.Removing.SignalInstance,
		"removed":  e.Removed.SignalInstance,
	})
	return e
}

// Map behaves like a Go map and emits Events before and after every
// addition, change and removal. Like a Go map it is not safe for concurrent
// use.
type Map[K comparable, V any] struct {
	Events *MapEvents[K, V]

	data  map[K]V
	equal func(a, b V) bool
}

type MapOption[K comparable, V any] func(*Map[K, V])

// WithEqual overrides how Set decides that a value changed. By default
// comparable values are compared with ==; other values always count as
// changed.
func WithEqual[K comparable, V any](equal func(a, b V) bool) MapOption[K, V] {
	return func(m *Map[K, V]) { m.equal = equal }
}

// NewMap returns a Map holding a copy of data, which may be nil.
func NewMap[K comparable, V any](data map[K]V, opts ...MapOption[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		Events: newMapEvents[K, V](),
		data:   make(map[K]V, len(data)),
		equal:  sameValue[V],
	}
	for _, opt := range opts {
		opt(m)
	}
	maps.Copy(m.data, data)
	return m
}

func sameValue[V any](a, b V) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == bv
	}
	if !reflect.TypeOf(av).Comparable() || reflect.TypeOf(av) != reflect.TypeOf(bv) {
		return false
	}
	return av == bv
}

func (m *Map[K, V]) Len() int { return len(m.data) }

func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.data[key]
	return v, ok
}

// All iterates over the entries in unspecified order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return maps.All(m.data)
}

func (m *Map[K, V]) Keys() iter.Seq[K] {
	return maps.Keys(m.data)
}

// Set stores value under key, emitting Adding/Added for a new key and
// Changing/Changed when an existing value is replaced by a different one.
func (m *Map[K, V]) Set(key K, value V) error {
	old, exists := m.data[key]
	if !exists {
		if err := m.Events.Adding.Emit(key); err != nil {
			return err
		}
		m.data[key] = value
		return m.Events.Added.Emit(key, value)
	}
	if m.equal(old, value) {
		return nil
	}
	if err := m.Events.Changing.Emit(key); err != nil {
		return err
	}
	m.data[key] = value
	return m.Events.Changed.Emit(key, old, value)
}

// Update sets every entry of data.
func (m *Map[K, V]) Update(data map[K]V) error {
	for k, v := range data {
		if err := m.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key, emitting Removing and Removed. A missing key returns an
// error wrapping ErrKeyNotFound.
func (m *Map[K, V]) Delete(key K) error {
	old, ok := m.data[key]
	if !ok {
		return fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	if err := m.Events.Removing.Emit(key); err != nil {
		return err
	}
	delete(m.data, key)
	return m.Events.Removed.Emit(key, old)
}

// Pop removes key and returns its value.
func (m *Map[K, V]) Pop(key K) (V, error) {
	v, ok := m.data[key]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return v, m.Delete(key)
}

// Clear removes every entry, one Removing/Removed pair per key.
func (m *Map[K, V]) Clear() error {
	for _, k := range slices.Collect(maps.Keys(m.data)) {
		if err := m.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a Map with the same entries and fresh, unconnected Events.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return NewMap(m.data, WithEqual[K, V](m.equal))
}

func (m *Map[K, V]) String() string {
	return fmt.Sprintf("Map(%v)", m.data)
}
