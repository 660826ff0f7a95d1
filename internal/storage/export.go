package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/numlib/internal/convergence"
)

type ExportData struct {
	Run     RunMetadata          `json:"run"`
	Samples []convergence.Sample `json:"samples,omitempty"`
	Xs      []float64            `json:"xs,omitempty"`
	Ys      []float64            `json:"ys,omitempty"`
}

// ExportJSON writes a stored run together with its samples or trajectory.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta}
	if meta.Type == TypeStudy {
		if data.Samples, err = s.LoadSamples(runID); err != nil {
			return err
		}
	} else if data.Xs, data.Ys, err = s.LoadPath(runID); err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
