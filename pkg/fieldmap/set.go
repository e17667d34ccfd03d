package fieldmap

import (
	"encoding/json"
	"fmt"
)

// Set is a selection over a closed vocabulary.
type Set[K Key] struct {
	keys     []K
	selected []bool
}

// NewSet builds an empty selection over keys.
func NewSet[K Key](keys ...K) *Set[K] {
	ks := make([]K, len(keys))
	copy(ks, keys)
	for i, k := range ks {
		if int(k) != i {
			panic(fmt.Sprintf("fieldmap: key %s has ordinal %d, want %d", k, int(k), i))
		}
	}
	return &Set[K]{keys: ks, selected: make([]bool, len(ks))}
}

func (s *Set[K]) has(k K) bool {
	return int(k) >= 0 && int(k) < len(s.selected)
}

func (s *Set[K]) Add(k K) {
	if s.has(k) {
		s.selected[k] = true
	}
}

func (s *Set[K]) Remove(k K) {
	if s.has(k) {
		s.selected[k] = false
	}
}

// Toggle flips k and reports whether it is now selected.
func (s *Set[K]) Toggle(k K) bool {
	if !s.has(k) {
		return false
	}
	s.selected[k] = !s.selected[k]
	return s.selected[k]
}

func (s *Set[K]) Has(k K) bool {
	return s.has(k) && s.selected[k]
}

func (s *Set[K]) Len() int {
	n := 0
	for _, v := range s.selected {
		if v {
			n++
		}
	}
	return n
}

// Values returns the selected keys in ordinal order.
func (s *Set[K]) Values() []K {
	var out []K
	for i, v := range s.selected {
		if v {
			out = append(out, s.keys[i])
		}
	}
	return out
}

func (s *Set[K]) Clone() *Set[K] {
	c := &Set[K]{keys: s.keys, selected: make([]bool, len(s.selected))}
	copy(c.selected, s.selected)
	return c
}

func (s *Set[K]) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(s.keys))
	for _, k := range s.Values() {
		names = append(names, k.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON replaces the selection. Names outside the vocabulary are
// an error.
func (s *Set[K]) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	next := make([]bool, len(s.keys))
	for _, name := range names {
		k, ok := lookup(s.keys, name)
		if !ok {
			return fmt.Errorf("fieldmap: unknown key %q", name)
		}
		next[k] = true
	}
	s.selected = next
	return nil
}
