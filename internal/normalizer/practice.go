package normalizer

import (
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
)

type rawReadingSummary struct {
	Summary    flexString `json:"summary"`
	Vocabulary []struct {
		Word    flexString `json:"word"`
		Meaning flexString `json:"meaning"`
	} `json:"vocabulary"`
}

// NormalizeReadingSummary decodes {summary, vocabulary}. Vocabulary items
// missing either the word or its meaning are dropped.
func NormalizeReadingSummary(raw string) (string, []models.KeyVocabulary, error) {
	var payload rawReadingSummary
	if err := DecodeObject(raw, &payload); err != nil {
		return "", nil, err
	}

	vocabulary := make([]models.KeyVocabulary, 0, len(payload.Vocabulary))
	for _, v := range payload.Vocabulary {
		word, meaning := v.Word.String(), v.Meaning.String()
		if word == "" || meaning == "" {
			continue
		}
		vocabulary = append(vocabulary, models.KeyVocabulary{Word: word, Meaning: meaning})
	}

	summary := payload.Summary.String()
	if summary == "" && len(vocabulary) == 0 {
		return "", nil, ErrEmptyResult
	}
	return summary, vocabulary, nil
}

type rawWritingAnalysis struct {
	OverallFeedback flexString `json:"overallFeedback"`
	Grammar         []struct {
		Error       flexString `json:"error"`
		Correction  flexString `json:"correction"`
		Explanation flexString `json:"explanation"`
	} `json:"grammar"`
	Vocabulary []struct {
		Original   flexString `json:"original"`
		Suggestion flexString `json:"suggestion"`
		Reason     flexString `json:"reason"`
	} `json:"vocabulary"`
	StructureAndCohesion flexString `json:"structureAndCohesion"`
}

// NormalizeWritingAnalysis decodes essay feedback. Entries without the
// offending text are dropped.
func NormalizeWritingAnalysis(raw string) (*models.WritingAnalysis, error) {
	var payload rawWritingAnalysis
	if err := DecodeObject(raw, &payload); err != nil {
		return nil, err
	}

	analysis := &models.WritingAnalysis{
		OverallFeedback:      payload.OverallFeedback.String(),
		Grammar:              []models.GrammarFeedback{},
		Vocabulary:           []models.VocabularySuggestion{},
		StructureAndCohesion: payload.StructureAndCohesion.String(),
	}
	for _, g := range payload.Grammar {
		if g.Error.String() == "" {
			continue
		}
		analysis.Grammar = append(analysis.Grammar, models.GrammarFeedback{
			Error:       g.Error.String(),
			Correction:  g.Correction.String(),
			Explanation: g.Explanation.String(),
		})
	}
	for _, v := range payload.Vocabulary {
		if v.Original.String() == "" {
			continue
		}
		analysis.Vocabulary = append(analysis.Vocabulary, models.VocabularySuggestion{
			Original:   v.Original.String(),
			Suggestion: v.Suggestion.String(),
			Reason:     v.Reason.String(),
		})
	}

	if analysis.OverallFeedback == "" && analysis.StructureAndCohesion == "" &&
		len(analysis.Grammar) == 0 && len(analysis.Vocabulary) == 0 {
		return nil, ErrEmptyResult
	}
	return analysis, nil
}

type rawFeedback struct {
	Recommendation flexString `json:"recommendation"`
	WeakTopics     []struct {
		Topic        flexString `json:"topic"`
		QuestionType flexString `json:"questionType"`
	} `json:"weakTopics"`
}

// NormalizePersonalizedFeedback decodes coaching feedback. Weak topics keep
// the reported question type only when it resolves to a recognized sub-type.
func NormalizePersonalizedFeedback(raw string) (*models.PersonalizedFeedback, error) {
	var payload rawFeedback
	if err := DecodeObject(raw, &payload); err != nil {
		return nil, err
	}

	feedback := &models.PersonalizedFeedback{
		Recommendation: payload.Recommendation.String(),
		WeakTopics:     []models.WeakTopic{},
	}
	for _, t := range payload.WeakTopics {
		topic := t.Topic.String()
		if topic == "" {
			continue
		}
		weak := models.WeakTopic{Topic: topic}
		if qt, ok := models.CanonicalQuestionType(t.QuestionType.String()); ok {
			weak.QuestionType = string(qt)
		}
		feedback.WeakTopics = append(feedback.WeakTopics, weak)
	}

	if feedback.Recommendation == "" && len(feedback.WeakTopics) == 0 {
		return nil, ErrEmptyResult
	}
	return feedback, nil
}
