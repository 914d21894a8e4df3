package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
)

// OptionLetters are the answer keys assigned to options, in order.
var OptionLetters = []string{"A", "B", "C", "D", "E"}

// ClozePayload is the cloze generator response.
type ClozePayload struct {
	ClozeTests []ClozeTest `json:"clozeTests"`
}

type ClozeTest struct {
	Passage   string          `json:"passage"`
	Questions []ClozeQuestion `json:"questions"`
}

type ClozeQuestion struct {
	BlankNumber   int      `json:"blankNumber"`
	QuestionType  string   `json:"questionType"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// DecodeClozePayload extracts a ClozePayload from a raw response.
func DecodeClozePayload(raw string) (ClozePayload, error) {
	var payload ClozePayload
	if err := DecodeObject(raw, &payload); err != nil {
		return ClozePayload{}, err
	}
	return payload, nil
}

// NormalizeQuizBundle maps cloze blanks onto lettered questions. Blanks are
// ordered by number, at most five options are kept and lettered A to E, and
// the correct answer is matched case-insensitively against the option text.
// Blanks whose answer matches no option are dropped and counted. When nothing
// survives, the bundle is returned together with ErrEmptyResult.
func NormalizeQuizBundle(payload ClozePayload) (*models.QuizBundle, error) {
	bundle := &models.QuizBundle{Questions: []models.QuizQuestion{}}

	var passages []string
	nextID := 0
	for i, test := range payload.ClozeTests {
		title := ""
		if len(payload.ClozeTests) > 1 {
			title = fmt.Sprintf("--- Passage %d ---\n", i+1)
		}
		if strings.TrimSpace(test.Passage) != "" {
			passages = append(passages, title+test.Passage)
		}

		questions := make([]ClozeQuestion, len(test.Questions))
		copy(questions, test.Questions)
		sort.SliceStable(questions, func(a, b int) bool {
			return questions[a].BlankNumber < questions[b].BlankNumber
		})

		for _, q := range questions {
			options := q.Options
			if len(options) > len(OptionLetters) {
				options = options[:len(OptionLetters)]
			}

			correct := -1
			want := strings.TrimSpace(q.CorrectAnswer)
			for idx, opt := range options {
				if want != "" && strings.EqualFold(strings.TrimSpace(opt), want) {
					correct = idx
					break
				}
			}
			if correct == -1 {
				bundle.Dropped++
				continue
			}

			quizOptions := make([]models.QuizOption, len(options))
			lines := make([]string, len(options))
			for idx, opt := range options {
				quizOptions[idx] = models.QuizOption{Key: OptionLetters[idx], Value: opt}
				lines[idx] = fmt.Sprintf("%s) %s", OptionLetters[idx], opt)
			}

			bundle.Questions = append(bundle.Questions, models.QuizQuestion{
				ID:            nextID,
				QuestionText:  fmt.Sprintf("Blank (%d) - %s", q.BlankNumber, q.QuestionType),
				FullText:      fmt.Sprintf("%s\n\nQuestion for blank (%d). Options:\n%s", test.Passage, q.BlankNumber, strings.Join(lines, "\n")),
				Options:       quizOptions,
				CorrectAnswer: OptionLetters[correct],
			})
			nextID++
		}
	}

	if len(passages) > 0 {
		context := strings.Join(passages, "\n\n")
		bundle.Context = &context
	}

	if len(bundle.Questions) == 0 {
		return bundle, ErrEmptyResult
	}
	return bundle, nil
}

type rawQuiz struct {
	Context   flexString        `json:"context"`
	Questions []rawQuizQuestion `json:"questions"`
}

type rawQuizQuestion struct {
	QuestionText  flexString      `json:"questionText"`
	Question      flexString      `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer flexString      `json:"correctAnswer"`
}

// NormalizeGeneratedQuiz decodes a {context, questions} response. Options may
// be {key, value} objects or bare strings; missing keys are lettered by
// position. The correct answer is resolved against keys first, then option
// text, case-insensitively. Unresolved questions are dropped and counted.
func NormalizeGeneratedQuiz(raw string) (*models.QuizBundle, error) {
	var payload rawQuiz
	if err := DecodeObject(raw, &payload); err != nil {
		return nil, err
	}
	return normalizeRawQuiz(&payload)
}

func normalizeRawQuiz(payload *rawQuiz) (*models.QuizBundle, error) {
	bundle := &models.QuizBundle{Questions: []models.QuizQuestion{}}
	if ctx := payload.Context.String(); ctx != "" {
		bundle.Context = &ctx
	}

	for _, q := range payload.Questions {
		text := q.QuestionText.String()
		if text == "" {
			text = q.Question.String()
		}
		options := decodeQuizOptions(q.Options)
		key := resolveAnswer(options, q.CorrectAnswer.String())
		if text == "" || key == "" {
			bundle.Dropped++
			continue
		}

		number := len(bundle.Questions) + 1
		bundle.Questions = append(bundle.Questions, models.QuizQuestion{
			ID:            number - 1,
			QuestionText:  text,
			FullText:      quizFullText(bundle.Context, number, text, options),
			Options:       options,
			CorrectAnswer: key,
		})
	}

	if len(bundle.Questions) == 0 {
		return bundle, ErrEmptyResult
	}
	return bundle, nil
}

func decodeQuizOptions(raw json.RawMessage) []models.QuizOption {
	if jsonKind(raw) != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	options := make([]models.QuizOption, 0, len(items))
	for _, item := range items {
		var opt struct {
			Key   flexString `json:"key"`
			Value flexString `json:"value"`
		}
		if jsonKind(item) == '{' {
			if err := json.Unmarshal(item, &opt); err != nil {
				continue
			}
		} else if err := json.Unmarshal(bytes.TrimSpace(item), &opt.Value); err != nil {
			continue
		}

		key := opt.Key.String()
		if key == "" {
			if len(options) >= len(OptionLetters) {
				continue
			}
			key = OptionLetters[len(options)]
		}
		options = append(options, models.QuizOption{Key: key, Value: opt.Value.String()})
	}
	return options
}

func resolveAnswer(options []models.QuizOption, answer string) string {
	if answer == "" {
		return ""
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Key, answer) {
			return opt.Key
		}
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Value, answer) {
			return opt.Key
		}
	}
	return ""
}

func quizFullText(context *string, number int, text string, options []models.QuizOption) string {
	var b strings.Builder
	if context != nil {
		b.WriteString(*context)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%d. %s", number, text)
	for _, opt := range options {
		fmt.Fprintf(&b, "\n%s) %s", opt.Key, opt.Value)
	}
	return b.String()
}
