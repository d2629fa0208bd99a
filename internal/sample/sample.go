// Package sample holds the built-in demonstration dataset.
package sample

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"gradtrack/internal/domain"
)

//go:embed programs.yaml
var programsYAML []byte

// Programs decodes a fresh copy of the demonstration rows. Integers are
// widened to float64 so the rows look like ones decoded from the store.
func Programs() ([]domain.WireRecord, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(programsYAML, &rows); err != nil {
		return nil, fmt.Errorf("sample: decode programs: %w", err)
	}

	out := make([]domain.WireRecord, 0, len(rows))
	for _, r := range rows {
		w := make(domain.WireRecord, len(r))
		for k, v := range r {
			if n, ok := v.(int); ok {
				v = float64(n)
			}
			w[k] = v
		}
		out = append(out, w)
	}
	return out, nil
}
