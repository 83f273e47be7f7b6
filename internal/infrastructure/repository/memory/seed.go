package memory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
)

// SeedData is the fixture set loaded into a fresh store. It is also the format of
// SEED_FILE documents.
type SeedData struct {
	Pools         []SeedPool         `yaml:"pools"`
	Championships []SeedChampionship `yaml:"championships"`
	Rounds        []SeedRound        `yaml:"rounds"`
	Matches       []SeedMatch        `yaml:"matches"`
	Participants  []SeedParticipant  `yaml:"participants"`
	Predictions   []SeedPrediction   `yaml:"predictions"`
}

type SeedPool struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type SeedChampionship struct {
	ID     int64  `yaml:"id"`
	PoolID int64  `yaml:"pool_id"`
	Name   string `yaml:"name"`
	Year   int    `yaml:"year"`
}

type SeedRound struct {
	ID             int64  `yaml:"id"`
	ChampionshipID int64  `yaml:"championship_id"`
	Name           string `yaml:"name"`
	Finalized      bool   `yaml:"finalized"`
}

type SeedMatch struct {
	ID           int64      `yaml:"id"`
	RoundID      int64      `yaml:"round_id"`
	HomeTeam     string     `yaml:"home_team"`
	AwayTeam     string     `yaml:"away_team"`
	KickoffAt    *time.Time `yaml:"kickoff_at"`
	Result       string     `yaml:"result"`
	DisplayScore string     `yaml:"display_score"`
}

type SeedParticipant struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Nickname   string `yaml:"nickname"`
	Authorized bool   `yaml:"authorized"`
	Banned     bool   `yaml:"banned"`
	Withdrawn  bool   `yaml:"withdrawn"`
}

type SeedPrediction struct {
	UserID  string `yaml:"user_id"`
	MatchID int64  `yaml:"match_id"`
	Outcome string `yaml:"outcome"`
}

func LoadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}

	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return data, nil
}

// DemoSeed builds a small pool with one open round in the week of now.
func DemoSeed(now time.Time, loc *time.Location) SeedData {
	local := now.In(loc)
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -((int(local.Weekday()) + 6) % 7))
	at := func(days, hour int) *time.Time {
		v := monday.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
		return &v
	}

	return SeedData{
		Pools: []SeedPool{
			{ID: 1, Name: "Bolão SCA"},
		},
		Championships: []SeedChampionship{
			{ID: 1, PoolID: 1, Name: "Brasileirão Série A", Year: local.Year()},
		},
		Rounds: []SeedRound{
			{ID: 1, ChampionshipID: 1, Name: "Rodada 1"},
		},
		Matches: []SeedMatch{
			{ID: 1, RoundID: 1, HomeTeam: "Flamengo", AwayTeam: "Palmeiras", KickoffAt: at(5, 16)},
			{ID: 2, RoundID: 1, HomeTeam: "Corinthians", AwayTeam: "São Paulo", KickoffAt: at(6, 16)},
			{ID: 3, RoundID: 1, HomeTeam: "Grêmio", AwayTeam: "Internacional", KickoffAt: at(6, 18)},
			{ID: 4, RoundID: 1, HomeTeam: "Atlético-MG", AwayTeam: "Cruzeiro"},
		},
		Participants: []SeedParticipant{
			{ID: "demo-ana", Name: "Ana Souza", Nickname: "Aninha", Authorized: true},
			{ID: "demo-bruno", Name: "Bruno Lima", Authorized: true},
			{ID: "demo-carla", Name: "Carla Dias", Authorized: true, Withdrawn: true},
			{ID: "demo-diego", Name: "Diego Alves", Authorized: false},
		},
	}
}

// Load writes data into the store keeping the given identifiers. Predictions on
// matches that already have a result are scored with rule.
func (s *Store) Load(data SeedData, rule prediction.Rule, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range data.Pools {
		id := s.nextID("pools", item.ID)
		s.pools[id] = pool.Pool{ID: id, Name: item.Name, CreatedAt: now}
	}
	for _, item := range data.Championships {
		if _, ok := s.pools[item.PoolID]; !ok {
			return fmt.Errorf("seed championship %d: pool %d not found", item.ID, item.PoolID)
		}
		id := s.nextID("championships", item.ID)
		s.championships[id] = championship.Championship{
			ID:        id,
			PoolID:    item.PoolID,
			Name:      item.Name,
			Year:      item.Year,
			CreatedAt: now,
		}
	}
	for _, item := range data.Rounds {
		if _, ok := s.championships[item.ChampionshipID]; !ok {
			return fmt.Errorf("seed round %d: championship %d not found", item.ID, item.ChampionshipID)
		}
		id := s.nextID("rounds", item.ID)
		r := round.Round{ID: id, ChampionshipID: item.ChampionshipID, Name: item.Name, CreatedAt: now}
		if item.Finalized {
			at := now
			r.Finalized = true
			r.FinalizedAt = &at
		}
		s.rounds[id] = r
	}
	for _, item := range data.Matches {
		if _, ok := s.rounds[item.RoundID]; !ok {
			return fmt.Errorf("seed match %d: round %d not found", item.ID, item.RoundID)
		}
		id := s.nextID("matches", item.ID)
		m := match.Match{
			ID:           id,
			RoundID:      item.RoundID,
			HomeTeam:     item.HomeTeam,
			AwayTeam:     item.AwayTeam,
			KickoffAt:    item.KickoffAt,
			DisplayScore: item.DisplayScore,
			CreatedAt:    now,
		}
		if item.Result != "" {
			outcome, err := match.ParseOutcome(item.Result)
			if err != nil {
				return fmt.Errorf("seed match %d: %w", item.ID, err)
			}
			at := now
			m.Result = outcome
			m.Finalized = true
			m.FinalizedAt = &at
		}
		s.matches[id] = m
	}
	for _, item := range data.Participants {
		s.participants[item.ID] = participant.Participant{
			ID:         item.ID,
			Name:       item.Name,
			Nickname:   item.Nickname,
			Authorized: item.Authorized,
			Banned:     item.Banned,
			Withdrawn:  item.Withdrawn,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	for _, item := range data.Predictions {
		m, ok := s.matches[item.MatchID]
		if !ok {
			return fmt.Errorf("seed prediction %s/%d: match not found", item.UserID, item.MatchID)
		}
		outcome, err := match.ParseOutcome(item.Outcome)
		if err != nil {
			return fmt.Errorf("seed prediction %s/%d: %w", item.UserID, item.MatchID, err)
		}
		p := prediction.Prediction{UserID: item.UserID, MatchID: item.MatchID, Outcome: outcome, SubmittedAt: now}
		if m.Finalized {
			points := rule.Score(m.Result, outcome)
			at := now
			p.Points = &points
			p.ScoredAt = &at
		}
		s.predictions[predictionKey{userID: item.UserID, matchID: item.MatchID}] = p
	}
	return nil
}
