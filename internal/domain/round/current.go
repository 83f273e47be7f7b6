package round

import (
	"math"
	"time"
)

const (
	monthWeight         = 0.7
	concentrationWeight = 0.3
	concentrationDays   = 365.0
)

// Candidate is a round with the schedule data the detector needs.
type Candidate struct {
	ID        int64
	Finalized bool
	Matches   []Fixture
}

// Fixture is a match as seen by the detector. A match is resolved when it or its
// round is finalized.
type Fixture struct {
	KickoffAt *time.Time
	Finalized bool
}

// DetectCurrent picks the round a client should show by default. It is a UI
// convenience and must never be used to decide whether betting is open.
func DetectCurrent(now time.Time, loc *time.Location, rounds []Candidate) (int64, bool) {
	if len(rounds) == 0 {
		return 0, false
	}
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)

	bestID := int64(0)
	bestScore := -1.0
	for _, r := range rounds {
		if !hasPendingWork(localNow, r) {
			continue
		}
		score := candidateScore(localNow, loc, r)
		if score > bestScore || (score == bestScore && r.ID < bestID) {
			bestID = r.ID
			bestScore = score
		}
	}
	if bestScore >= 0 {
		return bestID, true
	}

	return fallback(rounds), true
}

func hasPendingWork(now time.Time, r Candidate) bool {
	for _, m := range r.Matches {
		if m.KickoffAt != nil && m.KickoffAt.After(now) {
			return true
		}
		if !m.Finalized && !r.Finalized {
			return true
		}
	}
	return false
}

func candidateScore(now time.Time, loc *time.Location, r Candidate) float64 {
	var (
		dated        int
		inMonth      int
		earliest     time.Time
		latest       time.Time
		haveBoundary bool
	)
	for _, m := range r.Matches {
		if m.KickoffAt == nil {
			continue
		}
		kickoff := m.KickoffAt.In(loc)
		dated++
		if kickoff.Year() == now.Year() && kickoff.Month() == now.Month() {
			inMonth++
		}
		if !haveBoundary || kickoff.Before(earliest) {
			earliest = kickoff
		}
		if !haveBoundary || kickoff.After(latest) {
			latest = kickoff
		}
		haveBoundary = true
	}

	fraction := 0.0
	spanDays := 0.0
	if dated > 0 {
		fraction = float64(inMonth) / float64(dated)
		spanDays = latest.Sub(earliest).Hours() / 24
	}

	return monthWeight*fraction + concentrationWeight*math.Max(0, 1-spanDays/concentrationDays)
}

func fallback(rounds []Candidate) int64 {
	openID := int64(0)
	anyOpen := false
	highestID := rounds[0].ID
	for _, r := range rounds {
		if r.ID > highestID {
			highestID = r.ID
		}
		if !r.Finalized && (!anyOpen || r.ID > openID) {
			openID = r.ID
			anyOpen = true
		}
	}
	if anyOpen {
		return openID
	}
	return highestID
}
