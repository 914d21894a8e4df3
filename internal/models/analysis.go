package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResultKind tags which variant of GeneratedResult is populated.
type ResultKind string

const (
	ResultQuestion ResultKind = "question"
	ResultPassage  ResultKind = "passage"
	ResultQuiz     ResultKind = "quiz"
)

// GeneratedResult is the typed form of an LLM analysis. Exactly one of
// Question, Passage or Quiz is set, matching Kind.
type GeneratedResult struct {
	Kind     ResultKind             `json:"kind"`
	Question *QuestionAnalysis      `json:"question,omitempty"`
	Passage  *PassageAnalysisBundle `json:"passage,omitempty"`
	Quiz     *QuizBundle            `json:"quiz,omitempty"`
}

// QuestionType returns the analyzer-reported sub-type, if any.
func (r *GeneratedResult) QuestionType() string {
	switch r.Kind {
	case ResultQuestion:
		if r.Question != nil {
			return r.Question.SoruTipi
		}
	case ResultPassage:
		if r.Passage != nil {
			return r.Passage.SoruTipi
		}
	}
	return ""
}

func (r *GeneratedResult) Difficulty() string {
	if r.Kind == ResultQuestion && r.Question != nil {
		return r.Question.ZorlukSeviyesi
	}
	return ""
}

type OptionExplanation struct {
	Secenek  string `json:"secenek"`
	Aciklama string `json:"aciklama"`
}

type QuestionAnalysis struct {
	SoruTipi        string              `json:"soruTipi"`
	Analiz          AnalysisSteps       `json:"analiz"`
	Konu            string              `json:"konu"`
	ZorlukSeviyesi  string              `json:"zorlukSeviyesi"`
	DogruCevap      string              `json:"dogruCevap"`
	DetayliAciklama string              `json:"detayliAciklama"`
	DigerSecenekler []OptionExplanation `json:"digerSecenekler"`
}

type MainTextAnalysis struct {
	AnaFikir string `json:"anaFikir"`
	Konu     string `json:"konu"`
}

type SubQuestionAnalysis struct {
	SoruNumarasi     string `json:"soruNumarasi"`
	DogruCevap       string `json:"dogruCevap"`
	DetayliAciklama  string `json:"detayliAciklama"`
	CeldiriciAnalizi string `json:"celdiriciAnalizi"`
}

type PassageAnalysisBundle struct {
	SoruTipi        string                `json:"soruTipi"`
	AnaMetinAnalizi MainTextAnalysis      `json:"anaMetinAnalizi"`
	SoruAnalizleri  []SubQuestionAnalysis `json:"soruAnalizleri"`
}

// AnalysisStep is one named step of a step-by-step analysis.
type AnalysisStep struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// AnalysisSteps is an ordered mapping of step name to text. It encodes as a
// JSON object whose key order is the slice order.
type AnalysisSteps []AnalysisStep

// Get returns the text of the named step.
func (s AnalysisSteps) Get(name string) (string, bool) {
	for _, step := range s {
		if step.Name == name {
			return step.Text, true
		}
	}
	return "", false
}

func (s AnalysisSteps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(step.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(step.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the upstream key order. Non-string values are kept as
// their compact JSON text.
func (s *AnalysisSteps) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("analysis steps: expected object, got %v", tok)
	}

	steps := AnalysisSteps{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("analysis steps: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		steps = append(steps, AnalysisStep{Name: key, Text: stepText(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = steps
	return nil
}

func stepText(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// QuizBundle is a set of multiple-choice questions with an optional shared
// passage.
type QuizBundle struct {
	Context   *string        `json:"context"`
	Questions []QuizQuestion `json:"questions"`
	// Dropped counts questions discarded because their answer could not be
	// resolved against the options.
	Dropped int `json:"dropped"`
}

type QuizOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type QuizQuestion struct {
	ID            int          `json:"id"`
	QuestionText  string       `json:"questionText"`
	FullText      string       `json:"fullText,omitempty"`
	Options       []QuizOption `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// DictionaryEntry holds the recognized sections of a dictionary lookup.
// Absent sections are left empty.
type DictionaryEntry struct {
	Pronunciation    string   `json:"pronunciation,omitempty"`
	Definitions      []string `json:"definitions,omitempty"`
	Synonyms         string   `json:"synonyms,omitempty"`
	Antonyms         string   `json:"antonyms,omitempty"`
	Etymology        string   `json:"etymology,omitempty"`
	ExampleSentences []string `json:"exampleSentences,omitempty"`
	Meaning          string   `json:"meaning,omitempty"`
}

func (e *DictionaryEntry) IsEmpty() bool {
	return e.Pronunciation == "" && len(e.Definitions) == 0 && e.Synonyms == "" &&
		e.Antonyms == "" && e.Etymology == "" && len(e.ExampleSentences) == 0 && e.Meaning == ""
}

type DictionaryLookup struct {
	Word     string           `json:"word"`
	Language string           `json:"language"`
	Entry    *DictionaryEntry `json:"entry"`
	ImageURL string           `json:"imageUrl,omitempty"`
}

type KeyVocabulary struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

type ReadingAnalysis struct {
	Summary    string          `json:"summary"`
	Vocabulary []KeyVocabulary `json:"vocabulary"`
	Questions  *QuizBundle     `json:"questions"`
}

type GrammarFeedback struct {
	Error       string `json:"error"`
	Correction  string `json:"correction"`
	Explanation string `json:"explanation"`
}

type VocabularySuggestion struct {
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

type WritingAnalysis struct {
	OverallFeedback      string                 `json:"overallFeedback"`
	Grammar              []GrammarFeedback      `json:"grammar"`
	Vocabulary           []VocabularySuggestion `json:"vocabulary"`
	StructureAndCohesion string                 `json:"structureAndCohesion"`
}

type WeakTopic struct {
	Topic        string `json:"topic"`
	QuestionType string `json:"questionType"`
}

type PersonalizedFeedback struct {
	Recommendation string      `json:"recommendation"`
	WeakTopics     []WeakTopic `json:"weakTopics"`
}

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role ChatRole `json:"role" validate:"required,oneof=user model"`
	Text string   `json:"text" validate:"required"`
}
