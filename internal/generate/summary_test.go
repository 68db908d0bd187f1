package generate

import (
	"strings"
	"testing"

	"astria/internal/astria"
)

func TestAdapterSummaryListsRefsInOrder(t *testing.T) {
	portrait := loraTune(1, "ohwx")
	portrait.Title = "Portrait"
	style := loraTune(2, "")
	style.Title = "Watercolor"
	style.Name = "style"

	summary := AdapterSummary(
		[]LoraReference{{TuneID: 1, Weight: 0.5}, {TuneID: 2, Weight: 1.0}},
		[]astria.Tune{*portrait, *style},
	)

	lines := strings.Split(summary, "\n")
	if len(lines) != 2 {
		t.Fatalf("summary = %q, want 2 lines", summary)
	}
	if lines[0] != "- Portrait (Woman) at weight 0.5, trigger word: ohwx" {
		t.Fatalf("line 1 = %q", lines[0])
	}
	if lines[1] != "- Watercolor (Style) at weight 1.0" {
		t.Fatalf("line 2 = %q", lines[1])
	}
}

func TestAdapterSummaryEmptyWithoutRefs(t *testing.T) {
	if got := AdapterSummary(nil, nil); got != "" {
		t.Fatalf("summary = %q, want empty", got)
	}
}
