package models

import "strings"

// QuestionType is the YDS question sub-type reported by the analyzer (soruTipi).
// Values are the Turkish labels used by the exam and the prompts.
type QuestionType string

const (
	QuestionVocabulary          QuestionType = "Kelime Sorusu"
	QuestionGrammar             QuestionType = "Dil Bilgisi Sorusu"
	QuestionCloze               QuestionType = "Cloze Test Sorusu"
	QuestionSentenceCompletion  QuestionType = "Cümle Tamamlama Sorusu"
	QuestionTranslation         QuestionType = "Çeviri Sorusu"
	QuestionParagraph           QuestionType = "Paragraf Sorusu"
	QuestionDialogueCompletion  QuestionType = "Diyalog Tamamlama Sorusu"
	QuestionRestatement         QuestionType = "Restatement (Yeniden Yazma) Sorusu"
	QuestionParagraphCompletion QuestionType = "Paragraf Tamamlama Sorusu"
	QuestionIrrelevantSentence  QuestionType = "Akışı Bozan Cümle Sorusu"
)

// QuestionTypes lists every recognized sub-type in display order.
var QuestionTypes = []QuestionType{
	QuestionVocabulary,
	QuestionGrammar,
	QuestionCloze,
	QuestionSentenceCompletion,
	QuestionTranslation,
	QuestionParagraph,
	QuestionDialogueCompletion,
	QuestionRestatement,
	QuestionParagraphCompletion,
	QuestionIrrelevantSentence,
}

func (q QuestionType) IsValid() bool {
	for _, t := range QuestionTypes {
		if t == q {
			return true
		}
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy         DifficultyLevel = "Easy"
	DifficultyIntermediate DifficultyLevel = "Intermediate"
	DifficultyAdvanced     DifficultyLevel = "Advanced"
	DifficultyExpert       DifficultyLevel = "Expert"
)

var DifficultyLevels = []DifficultyLevel{
	DifficultyEasy,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyExpert,
}

type ExamType string

const (
	ExamYDS    ExamType = "YDS"
	ExamYOKDIL ExamType = "YÖKDİL"
	ExamEYDS   ExamType = "e-YDS"
	ExamTOEFL  ExamType = "TOEFL"
	ExamIELTS  ExamType = "IELTS"
)

var ExamTypes = []ExamType{ExamYDS, ExamYOKDIL, ExamEYDS, ExamTOEFL, ExamIELTS}

// questionTypeAliases maps labels the analyzer is known to emit onto the
// catalog sub-types.
var questionTypeAliases = map[string]QuestionType{
	"Anlam Bütünlüğünü Bozan Cümle": QuestionIrrelevantSentence,
	"Akışı Bozan Cümle":             QuestionIrrelevantSentence,
	"Cloze Test":                    QuestionCloze,
}

// CanonicalQuestionType resolves an analyzer label such as
// "Dil Bilgisi Sorusu - Tense" to the recognized sub-type it starts with.
func CanonicalQuestionType(label string) (QuestionType, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}

	var best QuestionType
	for _, t := range QuestionTypes {
		if strings.HasPrefix(label, string(t)) && len(t) > len(best) {
			best = t
		}
	}
	if best != "" {
		return best, true
	}

	for prefix, t := range questionTypeAliases {
		if strings.HasPrefix(label, prefix) {
			return t, true
		}
	}
	return "", false
}
