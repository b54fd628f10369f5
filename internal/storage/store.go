package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ddzoom/internal/command"
	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/record"
)

const (
	metadataFile = "metadata.json"
	stateFile    = "state.txt"
	framesFile   = "frames.csv"
)

// Store is a catalog of finished recordings, one directory each.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RecordingMetadata struct {
	ID        string    `json:"id"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Frames    int       `json:"frames"`
	Planned   int       `json:"planned"`
	FPS       uint32    `json:"fps"`
	BitRate   uint32    `json:"bitrate"`
	Velocity  float64   `json:"velocity"`
	// magnifications and offsets in the exact command encoding
	StartMag  string  `json:"start_mag"`
	EndMag    string  `json:"end_mag"`
	TargetMag string  `json:"target_mag"`
	Offset    string  `json:"offset"`
	Depth     float64 `json:"depth_log10"`
	Elapsed   float64 `json:"elapsed_seconds"`
	Error     string  `json:"error,omitempty"`
}

// Complete reports whether the recording reached its planned length.
func (m *RecordingMetadata) Complete() bool {
	return m.Error == "" && m.Frames >= m.Planned
}

// Save stores the summary, the state script that reproduces the start of
// the recording and the per-frame magnification schedule.
func (s *Store) Save(sum *record.Summary, script []string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(sum.Settings.Filename), filepath.Ext(sum.Settings.Filename))
	if base == "" || base == "." {
		base = "recording"
	}
	id := fmt.Sprintf("%s_%d", base, sum.Started.Unix())
	runDir := filepath.Join(s.baseDir, id)
	for i := 2; ; i++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		id = fmt.Sprintf("%s_%d_%d", base, sum.Started.Unix(), i)
		runDir = filepath.Join(s.baseDir, id)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RecordingMetadata{
		ID:        id,
		Output:    sum.Settings.Filename,
		Timestamp: sum.Started,
		Width:     sum.Width,
		Height:    sum.Height,
		Frames:    sum.Frames,
		Planned:   sum.Planned,
		FPS:       sum.Settings.FPS,
		BitRate:   sum.Settings.BitRate,
		Velocity:  sum.Settings.Velocity,
		StartMag:  command.EncodeDD(sum.StartMag),
		EndMag:    command.EncodeDD(sum.EndMag),
		TargetMag: command.EncodeDD(sum.Settings.TargetMag),
		Offset:    command.EncodePair(sum.X, sum.Y),
		Depth:     math.Log10(sum.EndMag.Float64()),
		Elapsed:   sum.Elapsed.Seconds(),
	}
	if sum.Err != nil {
		meta.Error = sum.Err.Error()
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if len(script) > 0 {
		data := strings.Join(script, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(runDir, stateFile), []byte(data), 0644); err != nil {
			return "", err
		}
	}

	if err := writeFrames(filepath.Join(runDir, framesFile), sum); err != nil {
		return "", err
	}
	return id, nil
}

func writeFrames(path string, sum *record.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "time", "log10_mag"}); err != nil {
		return err
	}

	mag := sum.StartMag
	var step dd.DD
	if sum.Settings.FPS > 0 && sum.Settings.Velocity > 1 {
		step, err = dd.FromFloat(sum.Settings.Velocity).Root(uint(sum.Settings.FPS))
		if err != nil {
			return err
		}
	}
	for i := 0; i < sum.Frames; i++ {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(float64(i)/float64(sum.Settings.FPS), 'f', 4, 64),
			strconv.FormatFloat(math.Log10(mag.Float64()), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
		mag = mag.Mul(step)
	}
	w.Flush()
	return w.Error()
}

// List returns every readable recording, oldest first.
func (s *Store) List() ([]RecordingMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RecordingMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RecordingMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(id string) (*RecordingMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RecordingMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// StatePath is the state script of a recording, loadable with the load
// command.
func (s *Store) StatePath(id string) string {
	return filepath.Join(s.baseDir, id, stateFile)
}

// LoadFrames returns the log10 magnification of each frame.
func (s *Store) LoadFrames(id string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	depth := make([]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		v, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			continue
		}
		depth = append(depth, v)
	}
	return depth, nil
}
