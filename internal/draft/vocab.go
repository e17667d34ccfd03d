// Package draft defines the records the portal wizards build: competitions,
// athlete registrations and coach/judge profiles.
package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Program is a competition program code.
type Program int

const (
	ProgramIndividual Program = iota
	ProgramPair
	ProgramTrio
	ProgramGroup
	ProgramTeam
)

var programNames = [...]string{"individual", "pair", "trio", "group", "team"}

func (p Program) String() string {
	if p < 0 || int(p) >= len(programNames) {
		return fmt.Sprintf("program(%d)", int(p))
	}
	return programNames[p]
}

// Programs enumerates every program code.
func Programs() []Program {
	return []Program{ProgramIndividual, ProgramPair, ProgramTrio, ProgramGroup, ProgramTeam}
}

func ParseProgram(s string) (Program, error) {
	for _, p := range Programs() {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown program %q", s)
}

// Category is an age category.
type Category int

const (
	CategoryChildren Category = iota
	CategoryJuniors
	CategoryYouth
	CategorySeniors
	CategoryMasters
)

var categoryNames = [...]string{"children", "juniors", "youth", "seniors", "masters"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

func Categories() []Category {
	return []Category{CategoryChildren, CategoryJuniors, CategoryYouth, CategorySeniors, CategoryMasters}
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Defaults is the recommended value per program.
type Defaults map[Program]int

var (
	DefaultFees = Defaults{
		ProgramIndividual: 500,
		ProgramPair:       800,
		ProgramTrio:       1000,
		ProgramGroup:      1500,
		ProgramTeam:       2000,
	}
	DefaultCaps = Defaults{
		ProgramIndividual: 3,
		ProgramPair:       2,
		ProgramTrio:       2,
		ProgramGroup:      1,
		ProgramTeam:       1,
	}
)

// ParseDefaults reads "individual=500,pair=800". Programs left out are zero.
func ParseDefaults(s string) (Defaults, error) {
	out := Defaults{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, val, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("malformed default %q", item)
		}
		p, err := ParseProgram(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("default for %s must be a non-negative integer", p)
		}
		out[p] = n
	}
	return out, nil
}

// Date is a calendar date serialised as YYYY-MM-DD. The zero value is
// unset and encodes as an empty string.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		// full timestamps from older clients
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
