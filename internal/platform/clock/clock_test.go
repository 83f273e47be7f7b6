package clock

import (
	"testing"
	"time"
)

func TestSystem_NowUsesConfiguredLocation(t *testing.T) {
	loc := MustSaoPaulo()
	c := NewSystem(loc)

	if got := c.Now().Location().String(); got != DefaultTimeZone {
		t.Fatalf("unexpected location: %s", got)
	}
	if c.Location() != loc {
		t.Fatalf("expected configured location to be returned")
	}
}

func TestFixed_AdvanceAndSet(t *testing.T) {
	loc := MustSaoPaulo()
	start := time.Date(2026, 3, 4, 10, 0, 0, 0, loc)
	c := NewFixed(start, loc)

	c.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Fatalf("unexpected now after advance: got=%s want=%s", c.Now(), want)
	}

	utc := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)
	c.Set(utc)
	if c.Now().Hour() != 14 {
		t.Fatalf("expected 14h local for 17h UTC, got %d", c.Now().Hour())
	}
}

func TestLoadLocation_BlankFallsBackToDefault(t *testing.T) {
	loc, err := LoadLocation("  ")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if loc.String() != DefaultTimeZone {
		t.Fatalf("unexpected location: %s", loc)
	}

	if _, err := LoadLocation("Mars/Olympus"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
