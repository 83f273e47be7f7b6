package match

import (
	"errors"
	"testing"
)

func TestParseOutcome(t *testing.T) {
	cases := map[string]Outcome{
		"HOME_WIN":   OutcomeHomeWin,
		" away_win ": OutcomeAwayWin,
		"Draw":       OutcomeDraw,
	}
	for raw, want := range cases {
		got, err := ParseOutcome(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("unexpected outcome for %q: got=%s want=%s", raw, got, want)
		}
	}

	for _, raw := range []string{"", "HOME", "2-1", "VICTORY"} {
		if _, err := ParseOutcome(raw); !errors.Is(err, ErrInvalidOutcome) {
			t.Fatalf("expected ErrInvalidOutcome for %q, got %v", raw, err)
		}
	}
}
