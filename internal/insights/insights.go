// Package insights scores a completed typing session. The computation is a
// pure function of the session's raw signals: total error count, the prompt
// text and the per-keystroke intervals in milliseconds.
package insights

import (
	"errors"
	"strings"

	"keystroke-lab/backend/internal/models"
)

// Normalization ceilings, in milliseconds. A single interval at or above
// maxIntervalCeiling saturates cognitive load; an average interval at or
// above avgIntervalCeiling zeroes resilience.
const (
	maxIntervalCeiling = 2000.0
	avgIntervalCeiling = 1000.0
)

// outlierFactor marks a keystroke as "outlier slow" when its interval exceeds
// the session average by this factor.
const outlierFactor = 1.5

var (
	ErrNoDurations = errors.New("insights: typing durations are empty")
	ErrEmptyText   = errors.New("insights: text has no words")
)

// Compute derives the four behavioral scores from a session's raw signals.
// Every returned score lies in [0,1]. Empty durations or a wordless text are
// precondition violations and yield an error instead of NaN scores.
func Compute(totalErrors int, text string, durations []float64) (models.Insights, error) {
	if len(durations) == 0 {
		return models.Insights{}, ErrNoDurations
	}
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return models.Insights{}, ErrEmptyText
	}

	var sum, longest float64
	for _, d := range durations {
		sum += d
		if d > longest {
			longest = d
		}
	}
	avg := sum / float64(len(durations))

	outliers := 0
	for _, d := range durations {
		if d > avg*outlierFactor {
			outliers++
		}
	}

	return models.Insights{
		Impulsivity:   min(float64(totalErrors)/float64(wordCount), 1),
		CognitiveLoad: min(longest/maxIntervalCeiling, 1),
		Resilience:    max(1-avg/avgIntervalCeiling, 0),
		Anxiety:       min(float64(outliers)/float64(len(durations)), 1),
	}, nil
}

// ComputeSession scores a stored record from its raw fields.
func ComputeSession(s models.Session) (models.Insights, error) {
	return Compute(s.TotalErrors, s.Text, s.TypingDurations)
}
