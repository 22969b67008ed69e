package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSteadySession(t *testing.T) {
	got, err := Compute(2, "the quick brown fox", []float64{500, 500, 500, 500})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, got.Impulsivity, 1e-9)
	assert.InDelta(t, 0.25, got.CognitiveLoad, 1e-9)
	assert.InDelta(t, 0.5, got.Resilience, 1e-9)
	assert.InDelta(t, 0.0, got.Anxiety, 1e-9)
}

func TestComputeOutlierKeystroke(t *testing.T) {
	// avg=325, outlier threshold=487.5, only the 1000ms interval exceeds it.
	got, err := Compute(0, "some prompt text", []float64{100, 100, 100, 1000})
	require.NoError(t, err)

	assert.InDelta(t, 0.25, got.Anxiety, 1e-9)
}

func TestComputeClampsToUnitInterval(t *testing.T) {
	cases := []struct {
		name      string
		errors    int
		text      string
		durations []float64
	}{
		{"error flood", 500, "two words", []float64{10, 20}},
		{"glacial keystrokes", 0, "slow typist here", []float64{5000, 9000, 12000}},
		{"single keystroke", 3, "one", []float64{42}},
		{"zero intervals", 0, "all zero", []float64{0, 0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(tc.errors, tc.text, tc.durations)
			require.NoError(t, err)

			for name, score := range map[string]float64{
				"impulsivity":    got.Impulsivity,
				"cognitive_load": got.CognitiveLoad,
				"resilience":     got.Resilience,
				"anxiety":        got.Anxiety,
			} {
				assert.GreaterOrEqual(t, score, 0.0, name)
				assert.LessOrEqual(t, score, 1.0, name)
			}
		})
	}
}

func TestComputeSaturation(t *testing.T) {
	got, err := Compute(10, "two words", []float64{3000, 3000})
	require.NoError(t, err)

	assert.Equal(t, 1.0, got.Impulsivity)
	assert.Equal(t, 1.0, got.CognitiveLoad)
	assert.Equal(t, 0.0, got.Resilience)
}

func TestComputeEmptyDurations(t *testing.T) {
	_, err := Compute(0, "some text", nil)
	assert.ErrorIs(t, err, ErrNoDurations)

	_, err = Compute(0, "some text", []float64{})
	assert.ErrorIs(t, err, ErrNoDurations)
}

func TestComputeWordlessText(t *testing.T) {
	_, err := Compute(0, "", []float64{100})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = Compute(0, "   \t ", []float64{100})
	assert.ErrorIs(t, err, ErrEmptyText)
}
