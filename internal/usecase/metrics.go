package usecase

import "time"

// MetricsRecorder receives business counters. The Prometheus implementation lives
// in internal/observability.
type MetricsRecorder interface {
	PredictionSubmitted(result string)
	Finalized(kind string)
	RankingComputed(scope string, took time.Duration)
}

const (
	submitResultAccepted  = "accepted"
	submitResultUnchanged = "unchanged"
	submitResultClosed    = "closed"
	submitResultRejected  = "rejected"

	finalizedKindMatch   = "match"
	finalizedKindRound   = "round"
	finalizedKindRescore = "rescore"
)

type nopMetrics struct{}

func (nopMetrics) PredictionSubmitted(string)            {}
func (nopMetrics) Finalized(string)                      {}
func (nopMetrics) RankingComputed(string, time.Duration) {}

func metricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
