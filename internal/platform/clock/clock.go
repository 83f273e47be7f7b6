package clock

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimeZone is the civil calendar every betting deadline is evaluated in.
const DefaultTimeZone = "America/Sao_Paulo"

// Clock supplies the current instant in the betting time zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System reads the wall clock and converts it to a fixed location.
type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

func (c System) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c System) Location() *time.Location {
	return c.loc
}

// Fixed always returns the same instant. Tests move it with Set or Advance.
type Fixed struct {
	now time.Time
	loc *time.Location
}

func NewFixed(now time.Time, loc *time.Location) *Fixed {
	if loc == nil {
		loc = time.UTC
	}
	return &Fixed{now: now.In(loc), loc: loc}
}

func (c *Fixed) Now() time.Time {
	return c.now
}

func (c *Fixed) Location() *time.Location {
	return c.loc
}

func (c *Fixed) Set(now time.Time) {
	c.now = now.In(c.loc)
}

func (c *Fixed) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// LoadLocation resolves an IANA zone name, falling back to DefaultTimeZone when blank.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// MustSaoPaulo is meant for tests and CLI defaults.
func MustSaoPaulo() *time.Location {
	loc, err := LoadLocation(DefaultTimeZone)
	if err != nil {
		panic(err)
	}
	return loc
}
