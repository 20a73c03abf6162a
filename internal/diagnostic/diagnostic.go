// Package diagnostic implements the three-question taste diagnostic that
// recommends a plan and a bean.
//
// Each question is a single-field step of a wizard.Engine. Answering the
// last question submits the answers to a local recommender, so the result
// is available as soon as Answer returns.
package diagnostic

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/wizard"
)

// Question identifiers. Each is also the name of the field holding the
// answer.
const (
	QuestionTaste     = "taste"
	QuestionScene     = "scene"
	QuestionFrequency = "frequency"
)

// Option is one possible answer.
type Option struct {
	Value string
	Label string
	Icon  string
}

// Question is one step of the diagnostic.
type Question struct {
	ID      string
	Prompt  string
	Options []Option
}

// Questions are asked in order.
var Questions = []Question{
	{
		ID:     QuestionTaste,
		Prompt: "あなたにとって理想的なコーヒーの味わいは？",
		Options: []Option{
			{Value: "fruity", Label: "フルーティーで華やか", Icon: "🍇"},
			{Value: "chocolate", Label: "チョコレートやナッツのような甘み", Icon: "🍫"},
			{Value: "deep", Label: "深いコクと苦味", Icon: "☕"},
		},
	},
	{
		ID:     QuestionScene,
		Prompt: "コーヒーを最も楽しむシーンは？",
		Options: []Option{
			{Value: "morning", Label: "朝の目覚めの一杯", Icon: "🌅"},
			{Value: "afternoon", Label: "午後のリラックスタイム", Icon: "🛋️"},
			{Value: "dessert", Label: "食後やデザートと一緒に", Icon: "🍰"},
		},
	},
	{
		ID:     QuestionFrequency,
		Prompt: "月にどのくらいコーヒーを飲みますか？",
		Options: []Option{
			{Value: "daily2plus", Label: "毎日2杯以上", Icon: "☕☕"},
			{Value: "daily1", Label: "毎日1杯程度", Icon: "☕"},
			{Value: "weekly3-4", Label: "週に3-4回", Icon: "📅"},
		},
	},
}

// Recommendation is the outcome of the diagnostic.
type Recommendation struct {
	Plan catalog.Plan
	Bean catalog.Bean
}

// ErrUnknownPlan is returned when the catalog lacks the recommended plan.
var ErrUnknownPlan = errors.New("recommended plan not in catalog")

// Recommend maps a complete set of answers to a plan and a bean. The
// drinking frequency picks the plan, the preferred taste picks the bean.
// The scene answer is informational only.
func Recommend(c *catalog.Catalog, answers wizard.Values) (Recommendation, error) {
	planID := "discovery"
	switch answers[QuestionFrequency] {
	case "daily2plus":
		planID = "connoisseur"
	case "daily1":
		planID = "enthusiast"
	}

	plan, ok := c.Plan(planID)
	if !ok {
		return Recommendation{}, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}

	bean, ok := c.BeanForTaste(answers[QuestionTaste])
	if !ok {
		bean, _ = c.BeanForTaste("fruity")
	}

	return Recommendation{Plan: plan, Bean: bean}, nil
}

// Diagnostic walks the user through Questions.
type Diagnostic struct {
	catalog *catalog.Catalog
	engine  *wizard.Engine
	result  *Recommendation
}

// New creates a diagnostic positioned on the first question.
func New(c *catalog.Catalog) *Diagnostic {
	d := &Diagnostic{catalog: c}

	steps := make([]wizard.Step, len(Questions))
	for i, q := range Questions {
		values := make([]string, len(q.Options))
		for j, o := range q.Options {
			values[j] = o.Value
		}
		steps[i] = wizard.Step{
			ID:     q.ID,
			Title:  q.Prompt,
			Fields: []string{q.ID},
			Rules: []wizard.Rule{
				wizard.Required(q.ID, "Please choose an answer"),
				wizard.OneOf(q.ID, values, "Please choose one of the listed answers"),
			},
		}
	}

	d.engine = wizard.MustNew(wizard.Config{
		Name:      "diagnostic",
		Steps:     steps,
		Submitter: wizard.SubmitterFunc(d.recommend),
	})
	return d
}

func (d *Diagnostic) recommend(_ context.Context, values wizard.Values) (*wizard.Receipt, error) {
	rec, err := Recommend(d.catalog, values)
	if err != nil {
		return nil, err
	}
	d.result = &rec
	return &wizard.Receipt{
		ID: rec.Plan.ID,
		Data: map[string]string{
			"plan": rec.Plan.ID,
			"bean": rec.Bean.ID,
		},
	}, nil
}

// Question returns the current question, or false once the diagnostic is
// complete.
func (d *Diagnostic) Question() (Question, bool) {
	s := d.engine.Snapshot()
	if s.Completed || s.Index >= len(Questions) {
		return Question{}, false
	}
	return Questions[s.Index], true
}

// Progress returns the current question index and the number of questions.
func (d *Diagnostic) Progress() (int, int) {
	s := d.engine.Snapshot()
	return s.Index, s.StepCount
}

// Answer records the answer to the current question and moves on. The
// last answer completes the diagnostic. An answer that is not one of the
// question's options is rejected with a *wizard.ValidationFailed.
func (d *Diagnostic) Answer(value string) error {
	q, ok := d.Question()
	if !ok {
		return wizard.ErrNavigationIgnored
	}

	d.engine.UpdateField(q.ID, q.ID, value)
	if q.ID != Questions[len(Questions)-1].ID {
		return d.engine.Advance()
	}
	_, err := d.engine.Submit(context.Background())
	return err
}

// Back returns to the previous question.
func (d *Diagnostic) Back() {
	d.engine.Retreat()
}

// Reset clears all answers and the result.
func (d *Diagnostic) Reset() {
	d.engine.Reset()
	d.result = nil
}

// Answers returns the answers given so far.
func (d *Diagnostic) Answers() wizard.Values {
	return d.engine.Snapshot().Values
}

// Result returns the recommendation once every question is answered.
func (d *Diagnostic) Result() (Recommendation, bool) {
	if d.result == nil || !d.engine.Snapshot().Completed {
		return Recommendation{}, false
	}
	return *d.result, true
}
