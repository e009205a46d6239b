package completion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModel is returned by LookupModel for identifiers not offered.
var ErrUnknownModel = errors.New("unknown model")

// Model is a selectable generative model.
type Model struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// DefaultModel is used when no model is selected.
const DefaultModel = "gemini-3-flash-preview"

// DefaultModels returns the models offered out of the box.
func DefaultModels() []Model {
	return []Model{
		{ID: "gemini-3-flash-preview", Label: "Flash 3.0"},
		{ID: "gemini-3-pro-preview", Label: "Pro 3.0"},
	}
}

// LookupModel finds id in models. An empty id selects the first model.
func LookupModel(models []Model, id string) (Model, error) {
	id = strings.TrimSpace(id)
	if len(models) == 0 {
		return Model{}, fmt.Errorf("%w: no models configured", ErrUnknownModel)
	}
	if id == "" {
		return models[0], nil
	}
	for _, m := range models {
		if m.ID == id {
			return m, nil
		}
	}
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return Model{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownModel, id, strings.Join(ids, ", "))
}
