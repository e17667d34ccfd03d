// Package fieldmap holds values keyed by a closed, compile-time vocabulary
// such as competition program codes.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key is an enumeration whose values are the ordinals 0..n-1.
type Key interface {
	~int
	String() string
}

// Number is the value type a Map can carry.
type Number interface {
	~int | ~int64 | ~float64
}

// Map is a fixed-key numeric map. Keys never change after construction,
// only values do.
type Map[K Key, V Number] struct {
	keys   []K
	values []V
}

// New builds a map over keys. Keys must be the ordinals 0..len(keys)-1.
func New[K Key, V Number](keys ...K) *Map[K, V] {
	ks := make([]K, len(keys))
	copy(ks, keys)
	for i, k := range ks {
		if int(k) != i {
			panic(fmt.Sprintf("fieldmap: key %s has ordinal %d, want %d", k, int(k), i))
		}
	}
	return &Map[K, V]{keys: ks, values: make([]V, len(ks))}
}

func (m *Map[K, V]) has(k K) bool {
	return int(k) >= 0 && int(k) < len(m.values)
}

// Keys returns the vocabulary in ordinal order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value for k, zero for unknown keys.
func (m *Map[K, V]) Get(k K) V {
	if !m.has(k) {
		return 0
	}
	return m.values[k]
}

// Set stores v for k. Negative and non-finite values are stored as zero.
// Unknown keys are ignored.
func (m *Map[K, V]) Set(k K, v V) {
	if !m.has(k) {
		return
	}
	m.values[k] = coerce(v)
}

// SetString parses s and stores it for k; anything that does not parse
// as a number is stored as zero.
func (m *Map[K, V]) SetString(k K, s string) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		m.Set(k, 0)
		return
	}
	m.Set(k, fromFloat[V](f))
}

// ApplyDefaults overwrites every key from table. Keys missing from the
// table become zero. A table with a key outside the vocabulary or a
// negative or non-finite value is rejected and the map is left unchanged.
func (m *Map[K, V]) ApplyDefaults(table map[K]V) error {
	for k, v := range table {
		if !m.has(k) {
			return fmt.Errorf("fieldmap: default for unknown key %d", int(k))
		}
		if coerce(v) != v {
			return fmt.Errorf("fieldmap: invalid default %v for %s", v, k)
		}
	}
	for i, k := range m.keys {
		m.values[i] = table[k]
	}
	return nil
}

// AnyNonZero reports whether at least one key carries a non-zero value.
func (m *Map[K, V]) AnyNonZero() bool {
	for _, v := range m.values {
		if v != 0 {
			return true
		}
	}
	return false
}

// NonZero returns the keys holding a non-zero value, in ordinal order.
func (m *Map[K, V]) NonZero() []K {
	var out []K
	for i, v := range m.values {
		if v != 0 {
			out = append(out, m.keys[i])
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{keys: m.keys, values: make([]V, len(m.values))}
	copy(c.values, m.values)
	return c
}

// MarshalJSON encodes the map as an object keyed by the key names, in
// ordinal order.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(k.String())
		buf.Write(name)
		buf.WriteByte(':')
		val, err := json.Marshal(m.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces every value. Keys absent from the input become
// zero; names outside the vocabulary are an error. The receiver must have
// been built with New.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	next := make([]V, len(m.keys))
	for name, f := range raw {
		k, ok := lookup(m.keys, name)
		if !ok {
			return fmt.Errorf("fieldmap: unknown key %q", name)
		}
		next[k] = coerce(fromFloat[V](f))
	}
	m.values = next
	return nil
}

func lookup[K Key](keys []K, name string) (K, bool) {
	for _, k := range keys {
		if k.String() == name {
			return k, true
		}
	}
	var zero K
	return zero, false
}

func coerce[V Number](v V) V {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return v
}

func fromFloat[V Number](f float64) V {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return V(f)
}
