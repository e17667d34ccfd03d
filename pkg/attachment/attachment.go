// Package attachment tracks the files a wizard session has collected.
// Files are kept apart from the draft record and only join it when a
// submission is encoded.
package attachment

import (
	"errors"
	"fmt"
)

const (
	MiB int64 = 1 << 20

	DocumentCeiling = 10 * MiB
	ImageCeiling    = 2 * MiB
)

var (
	ErrUnknownSlot = errors.New("unknown attachment slot")
	ErrTooLarge    = errors.New("file exceeds the size limit")
	ErrNoSuchFile  = errors.New("no file at that position")
)

type Kind int

const (
	Single Kind = iota
	List
)

// Slot declares one named file field.
type Slot struct {
	Name    string
	Kind    Kind
	Ceiling int64
}

type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// size is the larger of the declared size and the bytes actually held.
func (f File) size() int64 {
	return max(f.Size, int64(len(f.Data)))
}

func (f File) clone() File {
	c := f
	if f.Data != nil {
		c.Data = make([]byte, len(f.Data))
		copy(c.Data, f.Data)
	}
	return c
}

// RejectedError is returned by Accept when a file is over its slot's ceiling.
type RejectedError struct {
	Slot    string
	Size    int64
	Ceiling int64
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s is %d bytes, limit is %d", ErrTooLarge, e.Slot, e.Size, e.Ceiling)
}

func (e *RejectedError) Unwrap() error { return ErrTooLarge }

// Set holds files per slot. The zero value has no slots; use NewSet.
type Set struct {
	slots []Slot
	files map[string][]File
}

func NewSet(slots ...Slot) *Set {
	s := &Set{
		slots: make([]Slot, len(slots)),
		files: make(map[string][]File, len(slots)),
	}
	copy(s.slots, slots)
	return s
}

func (s *Set) slot(name string) (Slot, bool) {
	for _, sl := range s.slots {
		if sl.Name == name {
			return sl, true
		}
	}
	return Slot{}, false
}

// Slots returns the declared slots in declaration order.
func (s *Set) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Accept stores f in the named slot. A file over the slot's ceiling is
// rejected and the slot is left exactly as it was.
func (s *Set) Accept(name string, f File) error {
	sl, ok := s.slot(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, name)
	}
	size := f.size()
	if size > sl.Ceiling {
		return &RejectedError{Slot: name, Size: size, Ceiling: sl.Ceiling}
	}
	f.Size = size
	f = f.clone()

	if sl.Kind == Single {
		s.files[name] = []File{f}
		return nil
	}
	s.files[name] = append(s.files[name], f)
	return nil
}

// Remove drops a file. Single slots ignore index.
func (s *Set) Remove(name string, index int) error {
	sl, ok := s.slot(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, name)
	}
	files := s.files[name]
	if sl.Kind == Single {
		if len(files) == 0 {
			return ErrNoSuchFile
		}
		delete(s.files, name)
		return nil
	}
	if index < 0 || index >= len(files) {
		return ErrNoSuchFile
	}
	next := make([]File, 0, len(files)-1)
	next = append(next, files[:index]...)
	next = append(next, files[index+1:]...)
	if len(next) == 0 {
		delete(s.files, name)
	} else {
		s.files[name] = next
	}
	return nil
}

// Has reports whether the named slot holds at least one file.
func (s *Set) Has(name string) bool {
	return s != nil && len(s.files[name]) > 0
}

// Files returns copies of the files in the named slot.
func (s *Set) Files(name string) []File {
	if s == nil {
		return nil
	}
	files := s.files[name]
	out := make([]File, len(files))
	for i, f := range files {
		out[i] = f.clone()
	}
	return out
}

// IsEmpty is true when no slot holds a file. A nil set is empty.
func (s *Set) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, files := range s.files {
		if len(files) > 0 {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy, so later Accept/Remove calls on s never
// reach anything built from the copy.
func (s *Set) Snapshot() *Set {
	if s == nil {
		return NewSet()
	}
	c := NewSet(s.slots...)
	for name, files := range s.files {
		cp := make([]File, len(files))
		for i, f := range files {
			cp[i] = f.clone()
		}
		c.files[name] = cp
	}
	return c
}

// Summary lists file metadata per populated slot, in slot order.
func (s *Set) Summary() map[string][]File {
	out := make(map[string][]File)
	if s == nil {
		return out
	}
	for _, sl := range s.slots {
		files := s.files[sl.Name]
		if len(files) == 0 {
			continue
		}
		meta := make([]File, len(files))
		for i, f := range files {
			meta[i] = File{Name: f.Name, ContentType: f.ContentType, Size: f.Size}
		}
		out[sl.Name] = meta
	}
	return out
}
