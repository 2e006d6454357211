// Package tags implements the multi-valued tag registry shared by every
// container decoder.
package tags

import (
	"iter"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// Value is a decoded tag entry.
type Value interface {
	// Identifier is the registry key, e.g. "TIT2" or "ARTIST".
	Identifier() string
	// Message is the human-readable text of the value.
	Message() string
	// Raw is the undecoded binary payload, empty for purely textual values.
	Raw() []byte
}

// Registry maps identifiers to ordered lists of values.
//
// Identifiers are uppercased on insert and on lookup. The first occurrence
// of an identifier fixes its position; later occurrences append to that
// list and never replace it.
type Registry[V Value] struct {
	entries *orderedmap.OrderedMap[string, []V]
}

// New creates an empty registry.
func New[V Value]() *Registry[V] {
	return &Registry[V]{entries: orderedmap.NewOrderedMap[string, []V]()}
}

func normalize(id string) string {
	return strings.ToUpper(id)
}

// Insert appends v under its identifier.
func (r *Registry[V]) Insert(v V) {
	key := normalize(v.Identifier())
	list, _ := r.entries.Get(key)
	r.entries.Set(key, append(list, v))
}

// Values returns every value stored under id, in insertion order.
func (r *Registry[V]) Values(id string) []V {
	if r == nil {
		return nil
	}
	list, _ := r.entries.Get(normalize(id))
	return list
}

// Get returns the messages of every value stored under id.
// Returns nil when id is absent.
func (r *Registry[V]) Get(id string) []string {
	list := r.Values(id)
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.Message()
	}
	return out
}

// GetFirst returns the first message stored under id, or "".
func (r *Registry[V]) GetFirst(id string) string {
	if list := r.Values(id); len(list) > 0 {
		return list[0].Message()
	}
	return ""
}

// GetRaw returns the raw payloads of every value stored under id.
func (r *Registry[V]) GetRaw(id string) [][]byte {
	list := r.Values(id)
	if len(list) == 0 {
		return nil
	}
	out := make([][]byte, len(list))
	for i, v := range list {
		out[i] = v.Raw()
	}
	return out
}

// Has reports whether any value is stored under id.
func (r *Registry[V]) Has(id string) bool {
	return r != nil && r.entries.Has(normalize(id))
}

// Len returns the number of distinct identifiers.
func (r *Registry[V]) Len() int {
	if r == nil {
		return 0
	}
	return r.entries.Len()
}

// Keys returns the identifiers in first-insertion order.
func (r *Registry[V]) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, r.entries.Len())
	for k := range r.entries.Keys() {
		keys = append(keys, k)
	}
	return keys
}

// All returns an iterator over identifiers and their values.
//
// Example:
//
//	for id, values := range reg.All() {
//		fmt.Printf("%s: %d value(s)\n", id, len(values))
//	}
func (r *Registry[V]) All() iter.Seq2[string, []V] {
	return func(yield func(string, []V) bool) {
		if r == nil {
			return
		}
		for k, v := range r.entries.AllFromFront() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Clear drops every entry.
func (r *Registry[V]) Clear() {
	r.entries = orderedmap.NewOrderedMap[string, []V]()
}
