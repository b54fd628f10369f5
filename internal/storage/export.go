package storage

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"

	"github.com/san-kum/ddzoom/internal/command"
)

// ExportData is a recording with its frame schedule and state script in
// one document.
type ExportData struct {
	RecordingMetadata
	Depth  []float64 `json:"depth_log10_per_frame"`
	Script []string  `json:"state_script"`
}

// Export gathers everything stored for id.
func (s *Store) Export(id string) (*ExportData, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	depth, err := s.LoadFrames(id)
	if err != nil {
		return nil, err
	}
	script, err := readScript(s.StatePath(id))
	if err != nil {
		return nil, err
	}
	return &ExportData{RecordingMetadata: *meta, Depth: depth, Script: script}, nil
}

// ExportJSON writes the export of id to w, indented.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	data, err := s.Export(id)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func readScript(path string) ([]string, error) {
	lines, err := command.ReadScript(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	return lines, err
}
