package ranking

import (
	"sort"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Build joins totals with the participant directory and orders the result.
// Participants missing from the directory are listed under their user ID.
func Build(scope Scope, totals []Total, participants []participant.Participant) Board {
	byID := make(map[string]participant.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	entries := make([]Entry, 0, len(totals))
	for _, total := range totals {
		if total.Scored <= 0 {
			continue
		}
		entry := Entry{
			UserID: total.UserID,
			Points: total.Points,
			Hits:   total.Hits,
			Scored: total.Scored,
		}
		if p, ok := byID[total.UserID]; ok {
			entry.DisplayName = p.DisplayName()
			entry.Banned = p.Banned
			entry.Withdrawn = p.Withdrawn
		}
		if normalizeName(entry.DisplayName) == "" {
			entry.DisplayName = total.UserID
		}
		entries = append(entries, entry)
	}

	Sort(entries)
	return Board{Scope: scope, Entries: entries}
}

// Sort orders by points descending, then display name ignoring case, then user ID,
// and assigns dense positions over points.
func Sort(entries []Entry) {
	// collate.Collator is not safe for concurrent use.
	collator := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if cmp := collator.CompareString(normalizeName(entries[i].DisplayName), normalizeName(entries[j].DisplayName)); cmp != 0 {
			return cmp < 0
		}
		return entries[i].UserID < entries[j].UserID
	})

	position := 0
	for idx := range entries {
		if idx == 0 || entries[idx].Points != entries[idx-1].Points {
			position++
		}
		entries[idx].Position = position
	}
}
