package diagnostic

import (
	"testing"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name      string
		answers   wizard.Values
		wantPlan  string
		wantBean  string
		wantPrice int
	}{
		{
			name:      "heavy drinker who likes chocolate",
			answers:   wizard.Values{"taste": "chocolate", "scene": "afternoon", "frequency": "daily2plus"},
			wantPlan:  "connoisseur",
			wantBean:  "colombia-huila",
			wantPrice: 6400,
		},
		{
			name:      "daily cup, deep roast",
			answers:   wizard.Values{"taste": "deep", "scene": "dessert", "frequency": "daily1"},
			wantPlan:  "enthusiast",
			wantBean:  "indonesia-mandheling",
			wantPrice: 4400,
		},
		{
			name:      "occasional, fruity",
			answers:   wizard.Values{"taste": "fruity", "scene": "morning", "frequency": "weekly3-4"},
			wantPlan:  "discovery",
			wantBean:  "ethiopia-yirgacheffe",
			wantPrice: 2400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Recommend(catalog.Default(), tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlan, rec.Plan.ID)
			assert.Equal(t, tt.wantBean, rec.Bean.ID)
			assert.Equal(t, tt.wantPrice, rec.Plan.FirstMonthPrice)
		})
	}
}

func TestRecommendMissingPlan(t *testing.T) {
	c := &catalog.Catalog{Plans: []catalog.Plan{{ID: "discovery"}}}
	_, err := Recommend(c, wizard.Values{"frequency": "daily1"})
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestDiagnosticFlow(t *testing.T) {
	d := New(catalog.Default())

	q, ok := d.Question()
	require.True(t, ok)
	assert.Equal(t, QuestionTaste, q.ID)

	require.NoError(t, d.Answer("deep"))
	require.NoError(t, d.Answer("morning"))

	i, n := d.Progress()
	assert.Equal(t, 2, i)
	assert.Equal(t, 3, n)

	_, done := d.Result()
	assert.False(t, done)

	require.NoError(t, d.Answer("daily1"))

	rec, done := d.Result()
	require.True(t, done)
	assert.Equal(t, "enthusiast", rec.Plan.ID)
	assert.Equal(t, "インドネシア マンデリン", rec.Bean.Name)

	_, ok = d.Question()
	assert.False(t, ok)
	assert.ErrorIs(t, d.Answer("daily1"), wizard.ErrNavigationIgnored)
}

func TestDiagnosticRejectsUnknownAnswer(t *testing.T) {
	d := New(catalog.Default())

	err := d.Answer("sweet")
	var vf *wizard.ValidationFailed
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, QuestionTaste, vf.Step)

	i, _ := d.Progress()
	assert.Equal(t, 0, i)
}

func TestDiagnosticBackAndReset(t *testing.T) {
	d := New(catalog.Default())
	require.NoError(t, d.Answer("fruity"))

	d.Back()
	q, _ := d.Question()
	assert.Equal(t, QuestionTaste, q.ID)
	assert.Equal(t, "fruity", d.Answers()["taste"], "answers survive going back")

	require.NoError(t, d.Answer("chocolate"))
	require.NoError(t, d.Answer("dessert"))
	require.NoError(t, d.Answer("daily2plus"))

	rec, ok := d.Result()
	require.True(t, ok)
	assert.Equal(t, "colombia-huila", rec.Bean.ID)

	d.Reset()
	_, ok = d.Result()
	assert.False(t, ok)
	assert.Empty(t, d.Answers())
	q, _ = d.Question()
	assert.Equal(t, QuestionTaste, q.ID)
}
