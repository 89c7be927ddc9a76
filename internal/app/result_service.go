package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"quizdesk/internal/domain"
)

// titleLookups bounds concurrent document reads while resolving quiz titles.
const titleLookups = 8

// ResultService backs the admin results views.
type ResultService struct {
	submissions SubmissionStore
	quizzes     *QuizService
}

func NewResultService(submissions SubmissionStore, quizzes *QuizService) *ResultService {
	return &ResultService{submissions: submissions, quizzes: quizzes}
}

// List returns every submission, newest first, with its quiz title and percentage.
func (s *ResultService) List(ctx context.Context) ([]domain.ResultRow, error) {
	subs, err := s.submissions.ListSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	titles := s.resolveTitles(ctx, subs)
	rows := make([]domain.ResultRow, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, newResultRow(sub, titles[sub.QuizID]))
	}
	return rows, nil
}

// Get returns a submission with the answer key of its quiz. If the quiz can
// no longer be read the detail is returned without questions.
func (s *ResultService) Get(ctx context.Context, id int64) (domain.ResultDetail, error) {
	sub, err := s.submissions.GetSubmission(ctx, id)
	if err != nil {
		return domain.ResultDetail{}, err
	}

	detail := domain.ResultDetail{
		Submission: newResultRow(sub, s.quizzes.QuizTitle(ctx, sub.QuizID)),
		Quiz:       []domain.Question{},
		Review:     []domain.QuestionReview{},
	}
	questions, err := s.quizzes.Questions(ctx, sub.QuizID)
	if err != nil {
		return detail, nil
	}
	detail.Quiz = questions
	detail.Review, detail.Breakdown = domain.Review(questions, sub.Answers)
	return detail, nil
}

// resolveTitles looks up each distinct quiz id once. Lookups never fail; a
// quiz that cannot be read keeps its id as title.
func (s *ResultService) resolveTitles(ctx context.Context, subs []domain.Submission) map[string]string {
	titles := make(map[string]string)
	for _, sub := range subs {
		titles[sub.QuizID] = sub.QuizID
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(titleLookups)
	for quizID := range titles {
		quizID := quizID
		g.Go(func() error {
			title := s.quizzes.QuizTitle(gctx, quizID)
			mu.Lock()
			titles[quizID] = title
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return titles
}

func newResultRow(sub domain.Submission, title string) domain.ResultRow {
	return domain.ResultRow{
		Submission: sub,
		QuizTitle:  title,
		Percent:    domain.Percentage(sub.Score, sub.Total),
	}
}
