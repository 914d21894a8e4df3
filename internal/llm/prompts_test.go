package llm

import (
	"testing"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryRequest_UsesParserHeaders(t *testing.T) {
	req := DictionaryRequest("resilient", "Turkish")
	require.Len(t, req.Messages, 1)
	prompt := req.Messages[0].Content

	for _, header := range []string{"**Pronunciation:**", "**Definitions:**", "**Synonyms:**", "**Antonyms:**", "**Etymology:**", "**Example Sentences:**", "**Turkish Meaning:**"} {
		assert.Contains(t, prompt, header)
	}
	assert.False(t, req.JSON)
}

func TestTutorRequest_MapsRoles(t *testing.T) {
	req := TutorRequest([]models.ChatMessage{
		{Role: models.ChatRoleUser, Text: "Merhaba"},
		{Role: models.ChatRoleModel, Text: "Merhaba, ben Onur."},
	}, "Present perfect nedir?")

	require.Len(t, req.Messages, 3)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
	assert.Equal(t, RoleAssistant, req.Messages[1].Role)
	assert.Equal(t, "Present perfect nedir?", req.Messages[2].Content)
	assert.Contains(t, req.System, "Onur")
}

func TestGeneratorRequest(t *testing.T) {
	t.Run("translation direction", func(t *testing.T) {
		req := GeneratorRequest(GeneratorOptions{
			QuestionType: models.QuestionTranslation,
			ExamType:     models.ExamYDS,
			Difficulty:   models.DifficultyAdvanced,
			Count:        2,
			Direction:    TurkishToEnglish,
		})
		prompt := req.Messages[0].Content
		assert.Contains(t, prompt, "Generate 2 Translation Questions for the YDS exam")
		assert.Contains(t, prompt, "Provide a sentence in Turkish and 5 options in English")
		assert.NotContains(t, prompt, "%!")
	})

	t.Run("cloze uses cloze shape", func(t *testing.T) {
		req := GeneratorRequest(GeneratorOptions{QuestionType: models.QuestionCloze, ExamType: models.ExamYOKDIL, Difficulty: models.DifficultyEasy, Count: 1})
		assert.Equal(t, "generate_cloze", req.Operation)
		assert.Contains(t, req.System, "clozeTests")
		assert.True(t, req.JSON)
	})

	t.Run("unknown type falls back to vocabulary", func(t *testing.T) {
		req := GeneratorRequest(GeneratorOptions{QuestionType: "Bilinmeyen", ExamType: models.ExamYDS, Difficulty: models.DifficultyEasy, Count: 3})
		assert.Contains(t, req.Messages[0].Content, "Vocabulary Questions")
		assert.NotContains(t, req.Messages[0].Content, "%!")
	})
}

func TestSimilarQuizRequest_DefaultsRule(t *testing.T) {
	req := SimilarQuizRequest("original question", &models.QuestionAnalysis{
		SoruTipi:       "Kelime Sorusu",
		Konu:           "Ekonomi",
		ZorlukSeviyesi: "Orta",
	})
	prompt := req.Messages[0].Content
	assert.Contains(t, prompt, "Kelime Sorusu - Genel")
	assert.Contains(t, prompt, "original question")
}

func TestAnalysisRequest_ListsQuestionTypes(t *testing.T) {
	req := AnalysisRequest("q")
	for _, qt := range models.QuestionTypes {
		assert.Contains(t, req.System, string(qt))
	}
	assert.True(t, req.JSON)
}
