package generate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"astria/internal/astria"
)

// AdapterSummary renders a human-readable list of the adapters blended into
// one generation, in the order they were applied. It works off the records
// already validated during composition; nothing is fetched again.
func AdapterSummary(refs []LoraReference, tunes []astria.Tune) string {
	if len(refs) == 0 {
		return ""
	}
	byID := make(map[int64]astria.Tune, len(tunes))
	for _, t := range tunes {
		byID[t.ID] = t
	}

	caser := cases.Title(language.English)
	lines := make([]string, 0, len(refs))
	for _, ref := range refs {
		tune, ok := byID[ref.TuneID]
		if !ok {
			lines = append(lines, fmt.Sprintf("- tune %d at weight %s", ref.TuneID, formatWeight(ref.Weight)))
			continue
		}
		line := fmt.Sprintf("- %s (%s) at weight %s", tune.Title, caser.String(tune.Name), formatWeight(ref.Weight))
		if token := tune.TriggerToken(); token != "" {
			line += fmt.Sprintf(", trigger word: %s", token)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
