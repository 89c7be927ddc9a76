package domain

import "math"

// AnswerMap maps a question id (as string) to the selected option. A nil
// value means the question was left unanswered.
type AnswerMap map[string]*Scalar

// answerFor looks the question up by its string id and then by its numeric
// form, skipping null entries.
func (a AnswerMap) answerFor(id Scalar) *Scalar {
	if v := a[id.String()]; v != nil {
		return v
	}
	if alt, ok := id.numberForm(); ok && alt != id.String() {
		return a[alt]
	}
	return nil
}

// Result is the outcome of scoring one submission.
type Result struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Score counts the scorable questions whose answer matches the correct answer
// by string form. Total is always the number of questions.
func Score(questions []Question, answers AnswerMap) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrEmptyQuiz
	}
	res := Result{Total: len(questions)}
	for _, q := range questions {
		if q.CorrectAnswer == nil {
			continue
		}
		given := answers.answerFor(q.ID)
		if given != nil && given.Equal(*q.CorrectAnswer) {
			res.Score++
		}
	}
	return res, nil
}

// Outcome classifies a single question in a submission.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeWrong      Outcome = "wrong"
	OutcomeUnanswered Outcome = "unanswered"
	OutcomeUnscored   Outcome = "unscored"
)

// QuestionReview pairs a question with what the participant chose.
type QuestionReview struct {
	ID            Scalar  `json:"id"`
	Given         *Scalar `json:"given"`
	CorrectAnswer *Scalar `json:"correct,omitempty"`
	Outcome       Outcome `json:"outcome"`
}

// Breakdown counts outcomes across a submission.
type Breakdown struct {
	Correct    int `json:"correct"`
	Wrong      int `json:"wrong"`
	Unanswered int `json:"unanswered"`
	Unscored   int `json:"unscored"`
}

// Review classifies every question. Wrong and unanswered are told apart by
// whether a non-null answer was supplied, not by the score.
func Review(questions []Question, answers AnswerMap) ([]QuestionReview, Breakdown) {
	reviews := make([]QuestionReview, 0, len(questions))
	var b Breakdown
	for _, q := range questions {
		given := answers.answerFor(q.ID)
		r := QuestionReview{ID: q.ID, Given: given, CorrectAnswer: q.CorrectAnswer}
		switch {
		case q.CorrectAnswer == nil:
			r.Outcome = OutcomeUnscored
			b.Unscored++
		case given == nil:
			r.Outcome = OutcomeUnanswered
			b.Unanswered++
		case given.Equal(*q.CorrectAnswer):
			r.Outcome = OutcomeCorrect
			b.Correct++
		default:
			r.Outcome = OutcomeWrong
			b.Wrong++
		}
		reviews = append(reviews, r)
	}
	return reviews, b
}

// Percentage returns score/total*100 rounded to two decimals. total is floored to 1.
func Percentage(score, total int) float64 {
	if total < 1 {
		total = 1
	}
	return math.Round(float64(score)/float64(total)*10000) / 100
}
