package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"quizdesk/internal/domain"
)

// DocumentStore reads and writes raw quiz documents (file, Postgres, or a cache in front of either).
type DocumentStore interface {
	LoadDocument(ctx context.Context, quizID string) ([]byte, error)
	SaveDocument(ctx context.Context, quizID string, raw []byte) error
	ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error)
}

// SubmissionStore persists submissions. CreateSubmission fills in ID and Time.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *domain.Submission) error
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	GetSubmission(ctx context.Context, id int64) (domain.Submission, error)
}

// Publisher announces stored submissions to live admin views.
type Publisher interface {
	Publish(ctx context.Context, sub domain.Submission) error
}

// SubmitRequest is a participant's finished attempt.
type SubmitRequest struct {
	Name    string           `json:"name" validate:"required"`
	QuizID  string           `json:"quizId" validate:"required"`
	Answers domain.AnswerMap `json:"answers" validate:"required"`
}

// QuizService contains the participant-facing quiz use cases.
type QuizService struct {
	documents   DocumentStore
	submissions SubmissionStore
	publisher   Publisher
	validate    *validator.Validate
}

func NewQuizService(documents DocumentStore, submissions SubmissionStore, publisher Publisher) *QuizService {
	return &QuizService{
		documents:   documents,
		submissions: submissions,
		publisher:   publisher,
		validate:    validator.New(),
	}
}

// load reads the stored document and derives its canonical questions. Both the
// display and the scoring path go through here.
func (s *QuizService) load(ctx context.Context, quizID string) (domain.Document, []domain.Question, error) {
	raw, err := s.documents.LoadDocument(ctx, quizID)
	if err != nil {
		return domain.Document{}, nil, err
	}
	doc, err := domain.ParseDocument(raw)
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	questions, err := doc.Normalize()
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	return doc, questions, nil
}

// GetQuiz returns the participant view of a quiz, without the answer key.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.PublicQuiz, error) {
	doc, questions, err := s.load(ctx, quizID)
	if err != nil {
		return domain.PublicQuiz{}, err
	}
	return domain.NewPublicQuiz(quizID, doc, questions), nil
}

// Questions returns the canonical questions, answer key included.
func (s *QuizService) Questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	_, questions, err := s.load(ctx, quizID)
	return questions, err
}

// Submit scores an attempt against a freshly loaded document and stores it.
// Any failure aborts the submission; nothing is stored with a zero score.
func (s *QuizService) Submit(ctx context.Context, req SubmitRequest) (domain.Receipt, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}

	_, questions, err := s.load(ctx, req.QuizID)
	if err != nil {
		return domain.Receipt{}, err
	}
	result, err := domain.Score(questions, req.Answers)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("quiz %s: %w", req.QuizID, err)
	}

	sub := domain.Submission{
		Name:    req.Name,
		QuizID:  req.QuizID,
		Score:   result.Score,
		Total:   result.Total,
		Answers: req.Answers,
	}
	if err := s.submissions.CreateSubmission(ctx, &sub); err != nil {
		return domain.Receipt{}, fmt.Errorf("save submission: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, sub); err != nil {
			log.Printf("publish submission %d: %v", sub.ID, err)
		}
	}

	return domain.Receipt{Score: sub.Score, Total: sub.Total, ID: sub.ID, Time: sub.Time}, nil
}

// QuizTitle resolves a quiz id to its title, falling back to the id on any failure.
func (s *QuizService) QuizTitle(ctx context.Context, quizID string) string {
	raw, err := s.documents.LoadDocument(ctx, quizID)
	if err != nil {
		return quizID
	}
	return documentTitle(raw, quizID)
}

type titledDocument struct {
	Title string `json:"title"`
}

// documentTitle reads only the title field, so a stored document that no
// longer normalizes still shows its title. Lists and non-string titles fall
// back to the id.
func documentTitle(raw []byte, fallback string) string {
	var doc titledDocument
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Title == "" {
		return fallback
	}
	return doc.Title
}

// ListQuizzes returns every stored quiz with its display title.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	records, err := s.documents.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.QuizSummary, 0, len(records))
	for _, rec := range records {
		if !json.Valid(rec.Raw) {
			log.Printf("list quizzes: skip %s: not a json document", rec.ID)
			continue
		}
		out = append(out, domain.QuizSummary{ID: rec.ID, Title: documentTitle(rec.Raw, rec.ID)})
	}
	return out, nil
}

type createQuizHeader struct {
	QuizID string `json:"quizId" validate:"required"`
	Title  string `json:"title"`
}

// CreateQuiz stores a quiz document from an admin request body. The document
// is taken from "content", then "questions", then the body itself; a bare
// list is wrapped as {title, questions}. It returns the quiz id.
func (s *QuizService) CreateQuiz(ctx context.Context, body []byte) (string, error) {
	var header createQuizHeader
	if err := json.Unmarshal(body, &header); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	header.QuizID = strings.TrimSpace(header.QuizID)
	if err := s.validate.Struct(header); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	title := header.Title
	if title == "" {
		title = header.QuizID
	}

	payload := json.RawMessage(body)
	for _, key := range []string{"content", "questions"} {
		if v, ok := fields[key]; ok && !isNull(v) {
			payload = v
			break
		}
	}

	doc, err := buildDocument(payload, title)
	if err != nil {
		return "", err
	}
	if _, err := domain.Normalize(doc); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	if err := s.documents.SaveDocument(ctx, header.QuizID, doc); err != nil {
		return "", fmt.Errorf("save quiz %s: %w", header.QuizID, err)
	}
	return header.QuizID, nil
}

func buildDocument(payload json.RawMessage, title string) ([]byte, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(payload, &list); err == nil {
		return json.MarshalIndent(map[string]any{"title": title, "questions": list}, "", "  ")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("%w: quiz content must be a list or an object", domain.ErrBadRequest)
	}
	if existing, ok := obj["title"]; !ok || isNull(existing) || string(existing) == `""` {
		encoded, err := json.Marshal(title)
		if err != nil {
			return nil, err
		}
		obj["title"] = encoded
	}
	return json.MarshalIndent(obj, "", "  ")
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}
