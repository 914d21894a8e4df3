package normalizer

import (
	"encoding/json"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
)

// Unspecified replaces any analysis field the upstream response left out.
const Unspecified = "Belirtilmemiş"

type rawAnalysis struct {
	SoruTipi        flexString      `json:"soruTipi"`
	Analiz          json.RawMessage `json:"analiz"`
	Konu            flexString      `json:"konu"`
	ZorlukSeviyesi  flexString      `json:"zorlukSeviyesi"`
	DogruCevap      flexString      `json:"dogruCevap"`
	DetayliAciklama flexString      `json:"detayliAciklama"`
	DigerSecenekler json.RawMessage `json:"digerSecenekler"`

	AnaMetinAnalizi json.RawMessage `json:"anaMetinAnalizi"`
	SoruAnalizleri  json.RawMessage `json:"soruAnalizleri"`

	Context   json.RawMessage `json:"context"`
	Questions json.RawMessage `json:"questions"`
}

// NormalizeAnalysis turns an analyzer response into a GeneratedResult.
//
// The variant is chosen by shape, most specific first:
//  1. a "soruAnalizleri" array selects a passage bundle
//  2. a "questions" array selects a quiz bundle
//  3. anything else is a single-question analysis; an "analiz" object is
//     kept as ordered steps and missing fields become Unspecified
//
// A payload with no JSON object fails with *MalformedResponseError. A payload
// that parses but carries none of the known fields fails with ErrEmptyResult.
func NormalizeAnalysis(raw string) (*models.GeneratedResult, error) {
	var payload rawAnalysis
	if err := DecodeObject(raw, &payload); err != nil {
		return nil, err
	}

	if jsonKind(payload.SoruAnalizleri) == '[' {
		passage, err := normalizePassage(raw, &payload)
		if err != nil {
			return nil, err
		}
		return &models.GeneratedResult{Kind: models.ResultPassage, Passage: passage}, nil
	}

	if jsonKind(payload.Questions) == '[' {
		var quiz rawQuiz
		if err := json.Unmarshal(payload.Questions, &quiz.Questions); err != nil {
			return nil, malformed(raw, "invalid questions list", err)
		}
		if jsonKind(payload.Context) != 0 {
			if err := json.Unmarshal(payload.Context, &quiz.Context); err != nil {
				return nil, malformed(raw, "invalid quiz context", err)
			}
		}
		bundle, err := normalizeRawQuiz(&quiz)
		if err != nil {
			return nil, err
		}
		return &models.GeneratedResult{Kind: models.ResultQuiz, Quiz: bundle}, nil
	}

	if !payload.hasQuestionFields() {
		return nil, ErrEmptyResult
	}

	question, err := normalizeQuestion(raw, &payload)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedResult{Kind: models.ResultQuestion, Question: question}, nil
}

func (p *rawAnalysis) hasQuestionFields() bool {
	return p.SoruTipi.String() != "" ||
		jsonKind(p.Analiz) != 0 ||
		p.Konu.String() != "" ||
		p.ZorlukSeviyesi.String() != "" ||
		p.DogruCevap.String() != "" ||
		p.DetayliAciklama.String() != "" ||
		jsonKind(p.DigerSecenekler) != 0
}

func normalizeQuestion(raw string, p *rawAnalysis) (*models.QuestionAnalysis, error) {
	q := &models.QuestionAnalysis{
		SoruTipi:        orUnspecified(p.SoruTipi),
		Analiz:          models.AnalysisSteps{},
		Konu:            orUnspecified(p.Konu),
		ZorlukSeviyesi:  orUnspecified(p.ZorlukSeviyesi),
		DogruCevap:      orUnspecified(p.DogruCevap),
		DetayliAciklama: orUnspecified(p.DetayliAciklama),
		DigerSecenekler: []models.OptionExplanation{},
	}

	switch jsonKind(p.Analiz) {
	case '{':
		if err := json.Unmarshal(p.Analiz, &q.Analiz); err != nil {
			return nil, malformed(raw, "invalid analiz object", err)
		}
	case 0:
	default:
		var text flexString
		if err := json.Unmarshal(p.Analiz, &text); err != nil {
			return nil, malformed(raw, "invalid analiz value", err)
		}
		if text.String() != "" {
			q.Analiz = models.AnalysisSteps{{Name: "analiz", Text: text.String()}}
		}
	}

	if jsonKind(p.DigerSecenekler) == '[' {
		var options []struct {
			Secenek  flexString `json:"secenek"`
			Aciklama flexString `json:"aciklama"`
		}
		if err := json.Unmarshal(p.DigerSecenekler, &options); err != nil {
			return nil, malformed(raw, "invalid digerSecenekler list", err)
		}
		for _, o := range options {
			if o.Secenek.String() == "" && o.Aciklama.String() == "" {
				continue
			}
			q.DigerSecenekler = append(q.DigerSecenekler, models.OptionExplanation{
				Secenek:  orUnspecified(o.Secenek),
				Aciklama: orUnspecified(o.Aciklama),
			})
		}
	}

	return q, nil
}

func normalizePassage(raw string, p *rawAnalysis) (*models.PassageAnalysisBundle, error) {
	var items []struct {
		SoruNumarasi     flexString `json:"soruNumarasi"`
		DogruCevap       flexString `json:"dogruCevap"`
		DetayliAciklama  flexString `json:"detayliAciklama"`
		CeldiriciAnalizi flexString `json:"celdiriciAnalizi"`
	}
	if err := json.Unmarshal(p.SoruAnalizleri, &items); err != nil {
		return nil, malformed(raw, "invalid soruAnalizleri list", err)
	}

	var main struct {
		AnaFikir flexString `json:"anaFikir"`
		Konu     flexString `json:"konu"`
	}
	if jsonKind(p.AnaMetinAnalizi) == '{' {
		if err := json.Unmarshal(p.AnaMetinAnalizi, &main); err != nil {
			return nil, malformed(raw, "invalid anaMetinAnalizi object", err)
		}
	}

	bundle := &models.PassageAnalysisBundle{
		SoruTipi: orUnspecified(p.SoruTipi),
		AnaMetinAnalizi: models.MainTextAnalysis{
			AnaFikir: orUnspecified(main.AnaFikir),
			Konu:     orUnspecified(main.Konu),
		},
		SoruAnalizleri: []models.SubQuestionAnalysis{},
	}
	for _, item := range items {
		// an entry without an answer key cannot be graded or rendered
		if item.DogruCevap.String() == "" {
			continue
		}
		bundle.SoruAnalizleri = append(bundle.SoruAnalizleri, models.SubQuestionAnalysis{
			SoruNumarasi:     orUnspecified(item.SoruNumarasi),
			DogruCevap:       orUnspecified(item.DogruCevap),
			DetayliAciklama:  orUnspecified(item.DetayliAciklama),
			CeldiriciAnalizi: orUnspecified(item.CeldiriciAnalizi),
		})
	}

	if len(bundle.SoruAnalizleri) == 0 {
		return nil, ErrEmptyResult
	}
	return bundle, nil
}
