package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func answers(t *testing.T, raw string) AnswerMap {
	t.Helper()
	var a AnswerMap
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("answers: %v", err)
	}
	return a
}

func correct(v Scalar) *Scalar {
	return &v
}

func TestScoreBareListScenario(t *testing.T) {
	questions, err := Normalize([]byte(`[{"id":1,"options":["a","b"],"correct":"a"},{"id":2,"options":["a","b"],"correct":"b"}]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	res, err := Score(questions, answers(t, `{"1":"a","2":"a"}`))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 1 || res.Total != 2 {
		t.Fatalf("expected 1/2, got %+v", res)
	}
	if p := Percentage(res.Score, res.Total); p != 50 {
		t.Fatalf("expected 50%%, got %v", p)
	}
}

func TestScorePaddedScenario(t *testing.T) {
	questions, err := Normalize([]byte(`{"count":3,"questions":[{"id":1,"correct":"a"}]}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	res, err := Score(questions, AnswerMap{})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 0 || res.Total != 3 {
		t.Fatalf("expected 0/3, got %+v", res)
	}
}

func TestScoreCoercesAcrossTypes(t *testing.T) {
	questions := []Question{{ID: IntScalar(5), Options: DefaultOptions, CorrectAnswer: correct(IntScalar(2))}}
	res, err := Score(questions, answers(t, `{"5":"2"}`))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 1 {
		t.Fatalf("expected cross-type match, got %+v", res)
	}
}

func TestScoreFallsBackToNumericKey(t *testing.T) {
	questions := []Question{{ID: StringScalar("05"), CorrectAnswer: correct(StringScalar("a"))}}
	res, err := Score(questions, answers(t, `{"5":"a"}`))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 1 {
		t.Fatalf("expected numeric id lookup to match, got %+v", res)
	}
}

func TestScoreIgnoresUnscoredQuestions(t *testing.T) {
	questions := []Question{
		{ID: IntScalar(1)},
		{ID: IntScalar(2), CorrectAnswer: correct(StringScalar("x"))},
	}
	res, err := Score(questions, answers(t, `{"1":"anything","2":"x"}`))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 1 || res.Total != 2 {
		t.Fatalf("expected 1/2, got %+v", res)
	}
}

func TestScoreNullAnswerNeverMatches(t *testing.T) {
	questions := []Question{{ID: IntScalar(1), CorrectAnswer: correct(StringScalar("null"))}}
	res, err := Score(questions, answers(t, `{"1":null}`))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 0 {
		t.Fatalf("null answer must not match, got %+v", res)
	}
}

func TestScoreDuplicateIDsScoredIndependently(t *testing.T) {
	questions := []Question{
		{ID: IntScalar(1), CorrectAnswer: correct(StringScalar("a"))},
		{ID: IntScalar(1), CorrectAnswer: correct(StringScalar("b"))},
	}
	res, err := Score(questions, answers(t, `{"1":"a"}`))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 1 || res.Total != 2 {
		t.Fatalf("expected 1/2, got %+v", res)
	}
}

func TestScoreEmptyQuiz(t *testing.T) {
	if _, err := Score(nil, AnswerMap{}); !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
}

func TestScoreBounds(t *testing.T) {
	questions, err := Normalize([]byte(`{"count":6,"questions":[{"correct":"a"},{"correct":"b"},{"correct":1},{"id":"z"}]}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, raw := range []string{`{}`, `{"1":"a","2":"b","3":1,"z":"q"}`, `{"1":"x","4":"a","5":null}`} {
		res, err := Score(questions, answers(t, raw))
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if res.Total != len(questions) || res.Score < 0 || res.Score > res.Total {
			t.Fatalf("out of bounds result %+v for %s", res, raw)
		}
	}
}

func TestReviewSeparatesWrongFromUnanswered(t *testing.T) {
	questions := []Question{{ID: IntScalar(1), CorrectAnswer: correct(StringScalar("x"))}}

	unanswered, _ := Score(questions, AnswerMap{})
	wrong, _ := Score(questions, answers(t, `{"1":"y"}`))
	if unanswered.Score != 0 || wrong.Score != 0 {
		t.Fatalf("expected both to score zero")
	}

	_, b := Review(questions, AnswerMap{})
	if b.Unanswered != 1 || b.Wrong != 0 {
		t.Fatalf("expected unanswered breakdown, got %+v", b)
	}
	reviews, b := Review(questions, answers(t, `{"1":"y"}`))
	if b.Wrong != 1 || b.Unanswered != 0 {
		t.Fatalf("expected wrong breakdown, got %+v", b)
	}
	if reviews[0].Outcome != OutcomeWrong || reviews[0].Given.String() != "y" {
		t.Fatalf("unexpected review %+v", reviews[0])
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total int
		want         float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 0, 0},
		{3, 3, 100},
	}
	for _, c := range cases {
		if got := Percentage(c.score, c.total); got != c.want {
			t.Fatalf("Percentage(%d, %d) = %v, want %v", c.score, c.total, got, c.want)
		}
	}
}
