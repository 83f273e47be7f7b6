package participant

import (
	"strings"
	"time"
)

// Participant is a pool member. ID is the subject issued by the identity provider.
type Participant struct {
	ID         string
	Name       string
	Nickname   string
	Authorized bool
	Banned     bool
	// Withdrawn is informational only and never gates betting or ranking.
	Withdrawn bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Participant) DisplayName() string {
	if nick := strings.TrimSpace(p.Nickname); nick != "" {
		return nick
	}
	return strings.TrimSpace(p.Name)
}

func (p Participant) CanPredict() bool {
	return p.Authorized && !p.Banned
}
