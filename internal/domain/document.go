package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DocumentKind tags which stored shape a quiz document was written in.
type DocumentKind int

const (
	// KindList is a bare array of questions.
	KindList DocumentKind = iota + 1
	// KindQuestionSet is an object with a questions array and an optional count.
	KindQuestionSet
	// KindScanned is a pdf/image exam whose question text lives in the scan.
	KindScanned
)

func (k DocumentKind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindQuestionSet:
		return "question-set"
	case KindScanned:
		return "scanned"
	}
	return "unknown"
}

const (
	ModePDF   = "pdf"
	ModeImage = "image"
)

// DefaultOptions are used when a question carries no options of its own.
var DefaultOptions = []string{"الف", "ب", "ج", "د"}

// PlaceholderPrompt is the prompt of the n-th (1-based) synthetic question.
func PlaceholderPrompt(n int) string {
	return "سوال شماره " + strconv.Itoa(n)
}

// PartialQuestion is a question as stored. Every field may be absent.
type PartialQuestion struct {
	ID       *Scalar  `json:"id,omitempty"`
	Question *string  `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Correct  *Scalar  `json:"correct,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// MaxQuestions bounds the declared count of a question set or scanned exam.
const MaxQuestions = 1000

// Document is a stored quiz resolved into one of its accepted shapes.
type Document struct {
	Kind      DocumentKind
	Title     string
	Mode      string
	PDFURL    string
	ImageURLs []string
	// Count is the declared question count; HasCount is false when the
	// document did not carry a numeric count.
	Count     int
	HasCount  bool
	Questions []PartialQuestion
}

type documentObject struct {
	Title     string          `json:"title"`
	Mode      string          `json:"mode"`
	PDFURL    string          `json:"pdfUrl"`
	ImageURLs []string        `json:"imageUrls"`
	Count     json.RawMessage `json:"count"`
	Questions json.RawMessage `json:"questions"`
}

// ParseDocument resolves raw document bytes into a Document. Anything that is
// not one of the accepted shapes fails with ErrInvalidFormat.
func ParseDocument(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}

	switch trimmed[0] {
	case '[':
		var items []PartialQuestion
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return Document{Kind: KindList, Questions: items}, nil
	case '{':
		return parseObject(trimmed)
	}
	return Document{}, fmt.Errorf("%w: top-level value is neither a list nor an object", ErrInvalidFormat)
}

func parseObject(data []byte) (Document, error) {
	var obj documentObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	doc := Document{
		Kind:      KindQuestionSet,
		Title:     obj.Title,
		Mode:      obj.Mode,
		PDFURL:    obj.PDFURL,
		ImageURLs: obj.ImageURLs,
	}
	if obj.Mode == ModePDF || obj.Mode == ModeImage {
		doc.Kind = KindScanned
	}
	count, hasCount, err := parseCount(obj.Count)
	if err != nil {
		return Document{}, err
	}
	doc.Count, doc.HasCount = count, hasCount

	questions := bytes.TrimSpace(obj.Questions)
	switch {
	case len(questions) > 0 && questions[0] == '[':
		if err := json.Unmarshal(questions, &doc.Questions); err != nil {
			return Document{}, fmt.Errorf("%w: questions: %v", ErrInvalidFormat, err)
		}
	case doc.Kind == KindScanned && doc.HasCount:
		// Pure placeholder exam: every question is synthesized from count.
	default:
		return Document{}, fmt.Errorf("%w: object has no questions list", ErrInvalidFormat)
	}
	return doc, nil
}

// parseCount accepts only JSON numbers. A fractional count rounds up, which
// matches iterating while index < count. Counts above MaxQuestions are rejected.
func parseCount(raw json.RawMessage) (int, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false, nil
	}
	if f <= 0 {
		return 0, true, nil
	}
	f = math.Ceil(f)
	if f > MaxQuestions {
		return 0, false, fmt.Errorf("%w: count %s exceeds %d", ErrInvalidFormat, raw, MaxQuestions)
	}
	return int(f), true, nil
}

// DisplayTitle returns the document title, or fallback when it has none.
func (d Document) DisplayTitle(fallback string) string {
	if d.Title != "" {
		return d.Title
	}
	return fallback
}

// Normalize converts the document into its canonical question list. The same
// input always yields the same list in the same order.
func (d Document) Normalize() ([]Question, error) {
	switch d.Kind {
	case KindList:
		return normalizeList(d.Questions), nil
	case KindQuestionSet, KindScanned:
		count := len(d.Questions)
		if d.HasCount {
			count = d.Count
		}
		return padQuestions(d.Questions, count), nil
	}
	return nil, fmt.Errorf("%w: unknown document kind %d", ErrInvalidFormat, d.Kind)
}

// Normalize parses raw document bytes and returns the canonical question list.
func Normalize(raw []byte) ([]Question, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	return doc.Normalize()
}

func normalizeList(items []PartialQuestion) []Question {
	out := make([]Question, 0, len(items))
	for i, item := range items {
		out = append(out, canonical(item, i))
	}
	return out
}

func padQuestions(items []PartialQuestion, count int) []Question {
	out := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		var item PartialQuestion
		if i < len(items) {
			item = items[i]
		}
		out = append(out, canonical(item, i))
	}
	return out
}

func canonical(item PartialQuestion, index int) Question {
	q := Question{
		ID:            IntScalar(index + 1),
		Prompt:        PlaceholderPrompt(index + 1),
		CorrectAnswer: item.Correct,
		ImageURL:      item.ImageURL,
	}
	if item.ID != nil {
		q.ID = *item.ID
	}
	if item.Question != nil {
		q.Prompt = *item.Question
	}
	if len(item.Options) > 0 {
		q.Options = append([]string(nil), item.Options...)
	} else {
		q.Options = append([]string(nil), DefaultOptions...)
	}
	return q
}
