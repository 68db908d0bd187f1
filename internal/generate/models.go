package generate

import "astria/internal/astria"

// Model identifies a base model the service exposes. Generation jobs are
// addressed through the id of the model's foundation tune.
type Model struct {
	Name   string
	TuneID int64
	Branch string
}

// SupportsLora reports whether lora adapters can be blended into prompts for
// this model. Adapters are family-locked to flux.
func (m Model) SupportsLora() bool {
	return m.Branch == astria.BranchFlux
}

var models = []Model{
	{Name: "flux", TuneID: 1504944, Branch: astria.BranchFlux},
	{Name: "sd15", TuneID: 690204, Branch: "sd15"},
}

// ModelByName resolves a model identifier as supplied by callers.
func ModelByName(name string) (Model, bool) {
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// ModelNames lists the known model identifiers in registry order.
func ModelNames() []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}
