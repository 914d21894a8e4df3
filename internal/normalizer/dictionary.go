package normalizer

import (
	"regexp"
	"strings"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type dictionarySection int

const (
	sectionPronunciation dictionarySection = iota
	sectionDefinitions
	sectionSynonyms
	sectionAntonyms
	sectionEtymology
	sectionExamples
	sectionMeaning
)

// sectionAliases is matched in order; "eş anlam" must be tried before the
// bare "anlam" of the meaning section.
var sectionAliases = []struct {
	section dictionarySection
	aliases []string
}{
	{sectionPronunciation, []string{"pronunciation", "telaffuz"}},
	{sectionDefinitions, []string{"definition", "tanım"}},
	{sectionSynonyms, []string{"synonym", "eş anlam"}},
	{sectionAntonyms, []string{"antonym", "zıt anlam"}},
	{sectionEtymology, []string{"etymology", "köken"}},
	{sectionExamples, []string{"example", "örnek"}},
	{sectionMeaning, []string{"meaning", "anlam"}},
}

var (
	headerPattern = regexp.MustCompile(`\*\*(.*?):\*\*`)
	bulletPattern = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)
)

// classifyHeader folds header twice: Turkish rules map "TANIM" to "tanım",
// while English headers such as "DEFINITIONS" need the default I to i.
func classifyHeader(header string) (dictionarySection, bool) {
	header = strings.TrimSpace(header)
	folded := []string{
		strings.ToLower(header),
		cases.Lower(language.Turkish).String(header),
	}
	for _, entry := range sectionAliases {
		for _, alias := range entry.aliases {
			for _, h := range folded {
				if strings.Contains(h, alias) {
					return entry.section, true
				}
			}
		}
	}
	return 0, false
}

// NormalizeDictionaryEntry splits a "**Header:** content" response into a
// DictionaryEntry. Unknown headers are ignored, and sections that are
// missing, blank or "N/A" stay empty. When a header repeats, the first
// occurrence wins.
func NormalizeDictionaryEntry(raw string) *models.DictionaryEntry {
	entry := &models.DictionaryEntry{}
	seen := map[dictionarySection]bool{}

	matches := headerPattern.FindAllStringSubmatchIndex(raw, -1)
	for i, m := range matches {
		section, ok := classifyHeader(raw[m[2]:m[3]])
		if !ok || seen[section] {
			continue
		}

		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := strings.TrimSpace(raw[m[1]:end])
		if isNotAvailable(content) {
			continue
		}

		switch section {
		case sectionDefinitions, sectionExamples:
			lines := splitListSection(content)
			if len(lines) == 0 {
				continue
			}
			if section == sectionDefinitions {
				entry.Definitions = lines
			} else {
				entry.ExampleSentences = lines
			}
		case sectionPronunciation:
			entry.Pronunciation = content
		case sectionSynonyms:
			entry.Synonyms = content
		case sectionAntonyms:
			entry.Antonyms = content
		case sectionEtymology:
			entry.Etymology = content
		case sectionMeaning:
			entry.Meaning = content
		}
		seen[section] = true
	}

	return entry
}

func splitListSection(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
		if line == "" || isNotAvailable(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isNotAvailable(s string) bool {
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	return s == "" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, "NA")
}

// RenderDictionaryEntry writes entry back in the header format accepted by
// NormalizeDictionaryEntry.
func RenderDictionaryEntry(entry *models.DictionaryEntry) string {
	var b strings.Builder
	scalar := func(header, value string) {
		if value == "" {
			return
		}
		b.WriteString("**" + header + ":** " + value + "\n")
	}
	list := func(header string, values []string) {
		if len(values) == 0 {
			return
		}
		b.WriteString("**" + header + ":**\n")
		for _, v := range values {
			b.WriteString("- " + v + "\n")
		}
	}

	scalar("Pronunciation", entry.Pronunciation)
	list("Definitions", entry.Definitions)
	scalar("Synonyms", entry.Synonyms)
	scalar("Antonyms", entry.Antonyms)
	scalar("Etymology", entry.Etymology)
	list("Example Sentences", entry.ExampleSentences)
	scalar("Meaning", entry.Meaning)
	return strings.TrimRight(b.String(), "\n")
}
