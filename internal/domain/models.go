package domain

import "time"

// Question is the canonical question record used by both rendering and scoring.
type Question struct {
	ID            Scalar   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *Scalar  `json:"correct,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// Scorable reports whether the question carries a correct answer.
func (q Question) Scorable() bool {
	return q.CorrectAnswer != nil
}

// Public strips the answer key.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		Prompt:   q.Prompt,
		Options:  q.Options,
		ImageURL: q.ImageURL,
	}
}

// PublicQuestion is the participant-facing projection of a question.
type PublicQuestion struct {
	ID       Scalar   `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// PublicQuiz is what participants receive when opening a quiz.
type PublicQuiz struct {
	QuizID    string           `json:"quizId"`
	Title     string           `json:"title"`
	Mode      string           `json:"mode,omitempty"`
	PDFURL    string           `json:"pdfUrl,omitempty"`
	ImageURLs []string         `json:"imageUrls,omitempty"`
	Count     int              `json:"count"`
	Questions []PublicQuestion `json:"questions"`
}

// NewPublicQuiz projects a document and its canonical questions for display.
func NewPublicQuiz(quizID string, doc Document, questions []Question) PublicQuiz {
	public := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, q.Public())
	}
	return PublicQuiz{
		QuizID:    quizID,
		Title:     doc.DisplayTitle(quizID),
		Mode:      doc.Mode,
		PDFURL:    doc.PDFURL,
		ImageURLs: doc.ImageURLs,
		Count:     len(public),
		Questions: public,
	}
}

// DocumentRecord is a raw stored document and its quiz id.
type DocumentRecord struct {
	ID  string
	Raw []byte
}

// QuizSummary is a quiz listing entry.
type QuizSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Submission is a persisted, immutable quiz attempt.
type Submission struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	QuizID  string    `json:"quizId"`
	Score   int       `json:"score"`
	Total   int       `json:"total"`
	Answers AnswerMap `json:"answers"`
	Time    time.Time `json:"time"`
}

// Receipt is returned to the participant after a submission is stored.
type Receipt struct {
	Score int       `json:"score"`
	Total int       `json:"total"`
	ID    int64     `json:"id"`
	Time  time.Time `json:"time"`
}

// ResultRow is a submission as listed in the admin results view.
type ResultRow struct {
	Submission
	QuizTitle string  `json:"quizTitle"`
	Percent   float64 `json:"percent"`
}

// ResultDetail is a single submission with its answer key and per-question review.
type ResultDetail struct {
	Submission ResultRow        `json:"submission"`
	Quiz       []Question       `json:"quiz"`
	Review     []QuestionReview `json:"review"`
	Breakdown  Breakdown        `json:"breakdown"`
}
