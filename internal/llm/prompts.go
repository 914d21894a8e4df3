package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
)

func allowedQuestionTypes() string {
	labels := make([]string, len(models.QuestionTypes))
	for i, t := range models.QuestionTypes {
		labels[i] = string(t)
	}
	out, _ := json.Marshal(labels)
	return string(out)
}

var analysisSystemPrompt = `Sen YDS, YÖKDİL ve e-YDS sınavlarında uzmanlaşmış, son derece dikkatli bir soru analisti ve eğitmensin. Sana bir YDS sorusu verilecek. Görevin, bu soruyu detaylıca analiz etmek ve cevabını MUTLAKA ve SADECE geçerli bir JSON objesi olarak sunmaktır. Cevabının başına veya sonuna asla metin veya markdown kod bloğu ekleme. Sadece saf JSON döndür.

ANALİZ İÇİN KRİTİK NOTLAR:
Zaman Zarflarına Dikkat Et: Cümledeki 'until now', 'so far', 'ago' gibi zaman ifadelerini tespit et ve analizinde kullan.
Bağlaçlara Odaklan: Zıtlık (but, although), sebep-sonuç (because, due to) gibi bağlaçların anlamsal ilişkisini vurgula.

Soru tipini analiz ederek aşağıdaki JSON yapılarından uygun olanı doldur.

1. Genel Soru Tipi:
{
  "soruTipi": "Değer MUTLAKA şu listeden biriyle başlamalıdır: ` + allowedQuestionTypes() + `. Gerekirse ana tipten sonra tire ile alt tipi belirt (Örn: Dil Bilgisi Sorusu - Tense).",
  "analiz": {"ipucu_1": "...", "ipucu_2": "...", "kural": "İlgili gramer kuralı veya kelime anlamı.", "celdirici_analizi": "..."},
  "konu": "Sorunun genel konusu",
  "zorlukSeviyesi": "Kolay/Orta/Zor",
  "dogruCevap": "Doğru seçeneğin harfi (Örn: C)",
  "detayliAciklama": "Doğru cevabın neden doğru olduğuna dair kapsamlı açıklama.",
  "digerSecenekler": [{"secenek": "A", "aciklama": "Bu seçeneğin neden yanlış olduğu."}]
}

2. Akışı Bozan Cümle Sorusu:
{
  "soruTipi": "Akışı Bozan Cümle Sorusu",
  "analiz": {"adim_1_ana_tema": "...", "adim_2_cumle_1_iliskisi": "...", "adim_3_cumle_2_iliskisi": "...", "adim_4_cumle_3_iliskisi": "...", "adim_5_cumle_4_iliskisi": "...", "adim_6_cumle_5_iliskisi": "...", "adim_7_sonuc": "..."},
  "konu": "...", "zorlukSeviyesi": "Kolay/Orta/Zor", "dogruCevap": "Örn: D) IV", "detayliAciklama": "...",
  "digerSecenekler": [{"secenek": "A) I", "aciklama": "..."}]
}

3. Paragraf / Cloze Test Analizi:
{
  "soruTipi": "Paragraf Sorusu" veya "Cloze Test Sorusu",
  "anaMetinAnalizi": {"anaFikir": "...", "konu": "..."},
  "soruAnalizleri": [{"soruNumarasi": "17", "dogruCevap": "C", "detayliAciklama": "...", "celdiriciAnalizi": "..."}]
}`

// AnalysisRequest asks for a structured analysis of a pasted question.
func AnalysisRequest(question string) Request {
	return Request{
		Operation: "analyze_question",
		System:    analysisSystemPrompt,
		Messages:  []Message{{Role: RoleUser, Content: question}},
		JSON:      true,
	}
}

// DictionaryRequest asks for a markdown entry with the headers the
// dictionary parser recognizes.
func DictionaryRequest(word, language string) Request {
	prompt := fmt.Sprintf(`Provide a detailed dictionary entry for the word or phrase: "%s"

You MUST include ALL of the following sections, clearly labeled EXACTLY as shown with markdown bolding. If you cannot find information for a section (like Antonyms), you MUST write "N/A" for that section instead of omitting it.

**Pronunciation:** [Provide phonetic spelling or IPA here]
**Definitions:** [List all common meanings]
**Synonyms:** [Provide a comma-separated list, or "N/A"]
**Antonyms:** [Provide a comma-separated list, or "N/A"]
**Etymology:** [Provide a brief etymology, or "N/A"]
**Example Sentences:** [List several example sentences]
**%s Meaning:** [Provide the meaning in %s]`, word, language, language)

	return Request{
		Operation: "dictionary_entry",
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
	}
}

const tutorSystemPrompt = `Sen, Türk öğrencilere YDS ve YÖKDİL gibi İngilizce yeterlilik sınavlarına hazırlanmalarında yardımcı olan uzman, sabırlı ve teşvik edici bir yapay zeka eğitmensin. Adın Onur. Kullanıcıya kendini Onur olarak tanıt ve bir öğretmen gibi davran, arkadaş canlısı ve destekleyici bir ton kullan.
- Cevapların her zaman açık, anlaşılır ve eğitici olmalı.
- Karmaşık gramer kurallarını basit örneklerle açıkla.
- Kelime öğrenimi için ipuçları ver.
- Kullanıcının sorduğu sorulara doğrudan ve net yanıtlar ver.`

// TutorRequest replays the conversation as chat turns and appends message.
func TutorRequest(history []models.ChatMessage, message string) Request {
	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		role := RoleUser
		if m.Role == models.ChatRoleModel {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: m.Text})
	}
	messages = append(messages, Message{Role: RoleUser, Content: message})

	return Request{
		Operation: "tutor_message",
		System:    tutorSystemPrompt,
		Messages:  messages,
	}
}

func ReadingSummaryRequest(passage string) Request {
	return Request{
		Operation: "reading_summary",
		System: `You are an expert English language instructor. Analyze the text and provide ONLY a summary and the 10 most important vocabulary words. The output MUST be a valid JSON object of the form {"summary": "A concise summary of the text in Turkish.", "vocabulary": [{"word": "...", "meaning": "..."}]}. CRITICAL: Each object inside the 'vocabulary' array MUST contain BOTH a 'word' property AND a 'meaning' property.`,
		Messages: []Message{{Role: RoleUser, Content: fmt.Sprintf(
			"Analyze the following English text. The user is a Turkish speaker preparing for the YDS exam.\nText:\n---\n%s\n---", passage)}},
		JSON: true,
	}
}

func ReadingQuestionsRequest(passage string) Request {
	return Request{
		Operation: "reading_questions",
		System:    `You are an expert English language instructor. Your task is to generate questions based on the provided text. The output MUST be a valid JSON object of the form {"questions": [{"question": "...", "options": [{"key": "A", "value": "..."}], "correctAnswer": "A"}]}.`,
		Messages: []Message{{Role: RoleUser, Content: fmt.Sprintf(
			"Based on the following English text, generate 3-4 multiple-choice comprehension questions suitable for a YDS exam candidate. The user is a Turkish speaker.\nText:\n---\n%s\n---", passage)}},
		JSON: true,
	}
}

// FeedbackSample is the per-item summary sent for personalized feedback.
type FeedbackSample struct {
	SoruTipi       string `json:"soruTipi"`
	ZorlukSeviyesi string `json:"zorlukSeviyesi"`
}

func FeedbackRequest(samples []FeedbackSample) Request {
	payload, _ := json.MarshalIndent(samples, "", "  ")
	return Request{
		Operation: "personalized_feedback",
		System: `You are an expert YDS exam coach. Your task is to analyze the provided history of a student's work. Identify their top 1-3 weakest areas based on the question types they have analyzed. Provide a concise, encouraging recommendation for them to improve. Then, list their weak topics in a structured format. The entire output must be a valid JSON object of the form {"recommendation": "...", "weakTopics": [{"topic": "...", "questionType": "..."}]}. Do not add any text before or after the JSON. The 'questionType' in the output MUST EXACTLY MATCH one of the keys from this list: ` + allowedQuestionTypes() + `.`,
		Messages: []Message{{Role: RoleUser, Content: "Here is a summary of a student's question analysis history for the Turkish YDS exam. Each object represents one analyzed question:\n" + string(payload)}},
		JSON:     true,
	}
}

func WritingTopicRequest() Request {
	return Request{
		Operation:   "writing_topic",
		Messages:    []Message{{Role: RoleUser, Content: "Generate a single, random English essay topic suitable for a YDS exam. Reply with the topic only."}},
		Temperature: 1,
	}
}

func WritingAnalysisRequest(topic, text string) Request {
	return Request{
		Operation: "writing_analysis",
		System:    `You are an expert English exam evaluator for Turkish students preparing for the YDS. Analyze the student's essay based on the provided topic. Provide constructive feedback as a JSON object of the form {"overallFeedback": "...", "grammar": [{"error": "...", "correction": "...", "explanation": "..."}], "vocabulary": [{"original": "...", "suggestion": "...", "reason": "..."}], "structureAndCohesion": "..."}. The feedback should be clear, encouraging, and helpful for improvement. Do not add any text or markdown before or after the JSON object.`,
		Messages:  []Message{{Role: RoleUser, Content: fmt.Sprintf("Essay Topic: %q\nStudent's Essay:\n---\n%s\n---", topic, text)}},
		JSON:      true,
	}
}

const quizShape = `{"context": "Varsa soruların dayandığı metin, yoksa null", "questions": [{"questionText": "...", "options": [{"key": "A", "value": "..."}], "correctAnswer": "A"}]}`

// SimilarQuizRequest asks for five new questions on the analyzed topic.
func SimilarQuizRequest(original string, analysis *models.QuestionAnalysis) Request {
	rule, ok := analysis.Analiz.Get("kural")
	if !ok || rule == "" {
		rule = "Genel"
	}
	prompt := fmt.Sprintf(`Bir YDS soru hazırlama uzmanısın. Görevin, verilen bilgilere dayanarak 5 adet tamamen YENİ ve ÖZGÜN çoktan seçmeli soru oluşturmaktır.

**KONU:** %s
**SORU TİPİ / KURAL:** %s - %s
**ZORLUK SEVİYESİ:** %s

Lütfen bu kriterlere uygun 5 tane soru oluştur.

**KESİNLİKLE KULLANMA:** Aşağıdaki örnek soruyu veya seçeneklerini yanıtta tekrarlama. Bu sadece bir referanstır.
---
%s
---`, analysis.Konu, analysis.SoruTipi, rule, analysis.ZorlukSeviyesi, original)

	return Request{
		Operation: "similar_quiz",
		System:    "Cevabın şu yapıya tam olarak uyan geçerli bir JSON objesi olmalıdır: " + quizShape + ". 'questions' dizisinin içinde 5 soru olduğundan emin ol.",
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		JSON:      true,
	}
}

type TranslationDirection string

const (
	EnglishToTurkish TranslationDirection = "en_to_tr"
	TurkishToEnglish TranslationDirection = "tr_to_en"
)

// GeneratorOptions configures a practice question generation call.
type GeneratorOptions struct {
	QuestionType models.QuestionType
	ExamType     models.ExamType
	Difficulty   models.DifficultyLevel
	Count        int
	Direction    TranslationDirection
}

var generatorTemplates = map[models.QuestionType]string{
	models.QuestionVocabulary:          "Generate EXACTLY %[1]d unique English Vocabulary Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each question MUST be a distinct sentence with a blank for a word or phrasal verb. Provide 5 plausible multiple-choice options.",
	models.QuestionGrammar:             "Generate %[1]d English Grammar Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each question should be a sentence with 1 or 2 blanks related to tense, preposition, or conjunction. Provide 5 plausible multiple-choice options.",
	models.QuestionCloze:               "Generate %[1]d unique English Cloze Test passage(s) for the %[2]s exam in Turkey, at a %[3]s difficulty level. Each passage must contain exactly 5 blanks, formatted as (1)___, (2)___, etc. The 5 blanks MUST test one of each of the following specific skills: Vocabulary, Phrasal Verb, Preposition, Tense, and Conjunction. For each blank, provide 5 plausible multiple-choice options, identify the correct one, and specify the questionType field accordingly. The topics should be diverse.",
	models.QuestionSentenceCompletion:  "Generate %[1]d English Sentence Completion Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each question should be an incomplete sentence, and you should provide 5 plausible options to complete it logically and grammatically.",
	models.QuestionTranslation:         "Generate %[1]d Translation Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Provide a sentence in %[4]s and 5 options in %[5]s, with one correct translation.",
	models.QuestionParagraph:           "Generate EXACTLY %[1]d English Paragraph passage(s) for the %[2]s exam in Turkey, at %[3]s difficulty level. Each SINGLE passage MUST be followed by EXACTLY 3 OR 4 multiple-choice questions about it. Provide 5 answer choices for each question.",
	models.QuestionDialogueCompletion:  "Generate EXACTLY %[1]d English Dialogue Completion Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each dialogue must have a missing line. Provide 5 plausible options to fill the blank logically.",
	models.QuestionRestatement:         "Generate %[1]d English Restatement Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each question should present a sentence and 5 options that rephrase it, with only one being the correct restatement.",
	models.QuestionParagraphCompletion: "Generate %[1]d English Paragraph Completion Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each question should be a paragraph with one sentence missing. Provide 5 plausible options to complete the paragraph coherently.",
	models.QuestionIrrelevantSentence:  "Generate %[1]d English Irrelevant Sentence Questions for the %[2]s exam in Turkey, at %[3]s difficulty level. Each question should be a paragraph of five numbered sentences. One of these sentences should disrupt the logical flow of the paragraph. The options should be the sentences themselves.",
}

const clozeShape = `{"clozeTests": [{"passage": "...", "questions": [{"blankNumber": 1, "questionType": "Vocabulary", "options": ["...", "...", "...", "...", "..."], "correctAnswer": "the correct option text"}]}]}`

// GeneratorRequest builds the practice question prompt for the selected type.
// Unknown types fall back to vocabulary questions.
func GeneratorRequest(opts GeneratorOptions) Request {
	template, ok := generatorTemplates[opts.QuestionType]
	if !ok {
		template = generatorTemplates[models.QuestionVocabulary]
	}

	source, target := "English", "Turkish"
	if opts.Direction == TurkishToEnglish {
		source, target = "Turkish", "English"
	}
	prompt := fmt.Sprintf(template, opts.Count, opts.ExamType, opts.Difficulty, source, target)

	shape := quizShape
	operation := "generate_questions"
	if opts.QuestionType == models.QuestionCloze {
		shape = clozeShape
		operation = "generate_cloze"
	}

	var system strings.Builder
	system.WriteString("You are an expert question writer for English proficiency exams in Turkey. ")
	system.WriteString("The output MUST be a single valid JSON object of the form ")
	system.WriteString(shape)
	system.WriteString(". Do not add any text before or after the JSON.")

	return Request{
		Operation: operation,
		System:    system.String(),
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		JSON:      true,
	}
}
