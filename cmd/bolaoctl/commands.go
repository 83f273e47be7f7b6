package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	authjwt "github.com/riskibarqy/bolao-sca/internal/infrastructure/auth/jwt"
	"github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
)

func newTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint an HS256 access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "secret", EnvVars: []string{"AUTH_JWT_SECRET"}, Required: true},
			&cli.StringFlag{Name: "issuer", EnvVars: []string{"AUTH_JWT_ISSUER"}, Value: "bolao-sca"},
			&cli.StringFlag{Name: "subject", Aliases: []string{"sub"}, Usage: "participant user id", Required: true},
			&cli.StringFlag{Name: "name", Usage: "display name claim"},
			&cli.StringFlag{Name: "role", Value: "participant", Usage: "set to the admin role for admin routes"},
			&cli.StringFlag{Name: "admin-role", EnvVars: []string{"AUTH_ADMIN_ROLE"}, Value: "admin"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			verifier := authjwt.NewVerifier(c.String("secret"), c.String("issuer"), c.String("admin-role"))
			token, err := verifier.Issue(c.String("subject"), c.String("name"), c.String("role"), c.Duration("ttl"))
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			_, err = fmt.Fprintln(c.App.Writer, token)
			return err
		},
	}
}

func newLockCommand() *cli.Command {
	return &cli.Command{
		Name:  "lock",
		Usage: "evaluate the betting lock at an instant",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: "RFC 3339 instant, defaults to now"},
			&cli.StringFlag{Name: "timezone", EnvVars: []string{"BETTING_TIMEZONE"}, Value: clock.DefaultTimeZone},
			&cli.StringFlag{Name: "close-weekday", EnvVars: []string{"BETTING_CLOSE_WEEKDAY"}, Value: "saturday"},
			&cli.StringFlag{Name: "close-time", EnvVars: []string{"BETTING_CLOSE_TIME"}, Value: "14:00"},
			&cli.StringFlag{Name: "reopen-weekday", EnvVars: []string{"BETTING_REOPEN_WEEKDAY"}, Value: "monday"},
			&cli.StringFlag{Name: "kickoff", Usage: "RFC 3339 match kickoff"},
			&cli.BoolFlag{Name: "match-finalized"},
			&cli.BoolFlag{Name: "round-finalized"},
		},
		Action: func(c *cli.Context) error {
			window, err := windowFromFlags(c)
			if err != nil {
				return err
			}

			now := time.Now()
			if raw := c.String("at"); raw != "" {
				if now, err = time.Parse(time.RFC3339, raw); err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}

			target := lock.Target{
				MatchFinalized: c.Bool("match-finalized"),
				RoundFinalized: c.Bool("round-finalized"),
			}
			if raw := c.String("kickoff"); raw != "" {
				kickoff, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return fmt.Errorf("parse --kickoff: %w", err)
				}
				target.KickoffAt = &kickoff
			}

			return printLock(c.App.Writer, window, now, target)
		},
	}
}

func windowFromFlags(c *cli.Context) (lock.Window, error) {
	loc, err := clock.LoadLocation(c.String("timezone"))
	if err != nil {
		return lock.Window{}, err
	}
	closeDay, err := lock.ParseWeekday(c.String("close-weekday"))
	if err != nil {
		return lock.Window{}, err
	}
	hour, minute, err := lock.ParseClock(c.String("close-time"))
	if err != nil {
		return lock.Window{}, err
	}
	reopenDay, err := lock.ParseWeekday(c.String("reopen-weekday"))
	if err != nil {
		return lock.Window{}, err
	}

	window := lock.Window{
		Location:      loc,
		CloseWeekday:  closeDay,
		CloseHour:     hour,
		CloseMinute:   minute,
		ReopenWeekday: reopenDay,
	}
	if err := window.Validate(); err != nil {
		return lock.Window{}, err
	}
	return window, nil
}

func printLock(w io.Writer, window lock.Window, now time.Time, target lock.Target) error {
	state := window.Evaluate(now, target)
	closesAt, reopensAt := window.Bounds(now)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "evaluated_at\t%s\n", now.In(window.Location).Format(time.RFC3339))
	fmt.Fprintf(tw, "state\t%s\n", state)
	if reason := state.Reason(); reason != "" {
		fmt.Fprintf(tw, "reason\t%s\n", reason)
	}
	fmt.Fprintf(tw, "weekly_lock\t%t\n", window.InWeeklyLock(now))
	fmt.Fprintf(tw, "closes_at\t%s\n", closesAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "reopens_at\t%s\n", reopensAt.Format(time.RFC3339))
	return tw.Flush()
}

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "seed file utilities",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "load a YAML seed into a scratch store and report what it holds",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "points-per-hit", EnvVars: []string{"SCORING_POINTS_PER_HIT"}, Value: prediction.DefaultPointsPerHit},
				},
				Action: func(c *cli.Context) error {
					path := strings.TrimSpace(c.Args().First())
					if path == "" {
						return fmt.Errorf("seed file path is required")
					}
					return checkSeed(c.App.Writer, path, prediction.Rule{PointsPerHit: c.Int("points-per-hit")})
				},
			},
		},
	}
}

func checkSeed(w io.Writer, path string, rule prediction.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	data, err := memory.LoadSeedFile(path)
	if err != nil {
		return err
	}
	if err := memory.NewStore().Load(data, rule, time.Now()); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "pools\t%d\n", len(data.Pools))
	fmt.Fprintf(tw, "championships\t%d\n", len(data.Championships))
	fmt.Fprintf(tw, "rounds\t%d\n", len(data.Rounds))
	fmt.Fprintf(tw, "matches\t%d\n", len(data.Matches))
	fmt.Fprintf(tw, "participants\t%d\n", len(data.Participants))
	fmt.Fprintf(tw, "predictions\t%d\n", len(data.Predictions))
	return tw.Flush()
}
