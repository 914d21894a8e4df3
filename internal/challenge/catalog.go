package challenge

import (
	"errors"
	"fmt"
	"os"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultCatalogVersion identifies the compiled-in template set.
const DefaultCatalogVersion = "2025.1"

// Template describes a repeatable daily task.
type Template struct {
	Description string                `yaml:"description" json:"description"`
	Type        models.ChallengeType  `yaml:"type" json:"type"`
	Target      int                   `yaml:"target" json:"target"`
	Meta        *models.ChallengeMeta `yaml:"meta,omitempty" json:"meta,omitempty"`
}

type Catalog struct {
	Version   string     `yaml:"version" json:"version"`
	Templates []Template `yaml:"templates" json:"templates"`
}

var ErrEmptyCatalog = errors.New("challenge catalog has no templates")

// DefaultCatalog holds the generic action challenges plus one analyze
// challenge per recognized question sub-type.
func DefaultCatalog() Catalog {
	templates := []Template{
		{Description: "Soru Analisti'nde 1 soru analiz et.", Type: models.ChallengeAnalyze, Target: 1},
		{Description: "Sözlük'te 3 yeni kelime ara.", Type: models.ChallengeDictionary, Target: 3},
		{Description: "AI Eğitmen Onur'a bir soru sor.", Type: models.ChallengeTutor, Target: 1},
		{Description: "Bir okuma parçasını analiz et.", Type: models.ChallengeReading, Target: 1},
		{Description: "Yazma Asistanı'nda bir metin analizi yap.", Type: models.ChallengeWriting, Target: 1},
	}
	for _, qt := range models.QuestionTypes {
		templates = append(templates, Template{
			Description: fmt.Sprintf("1 adet '%s' sorusu analiz et.", qt),
			Type:        models.ChallengeAnalyze,
			Target:      1,
			Meta:        &models.ChallengeMeta{QuestionType: string(qt)},
		})
	}
	return Catalog{Version: DefaultCatalogVersion, Templates: templates}
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read challenge catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse challenge catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid challenge catalog %s: %w", path, err)
	}
	return catalog, nil
}

func (c Catalog) Validate() error {
	if len(c.Templates) == 0 {
		return ErrEmptyCatalog
	}
	for i, t := range c.Templates {
		if !t.Type.IsValid() {
			return fmt.Errorf("template %d: unknown challenge type %q", i, t.Type)
		}
		if t.Target < 1 {
			return fmt.Errorf("template %d: target must be at least 1", i)
		}
		if t.Description == "" {
			return fmt.Errorf("template %d: description is required", i)
		}
	}
	return nil
}
