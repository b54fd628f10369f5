package command

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

// MaxLoadDepth bounds load commands inside loaded scripts.
const MaxLoadDepth = 8

// Snapshot is the persisted state.
type Snapshot struct {
	Start     hue.Color
	Intervals []hue.Interval
	Selected  int
	View      view.Transform
	Params    view.Params
	Record    record.Settings
}

// Serialize writes s as command lines that rebuild it when replayed in
// order against any prior state.
func Serialize(s Snapshot) []string {
	lines := []string{
		NameSetStartCol + " " + EncodeColor(s.Start),
		NameClearInt,
	}
	for _, iv := range s.Intervals {
		lines = append(lines,
			NameAddInt,
			NameSetIntPos+" "+strconv.Itoa(int(iv.Pos)),
			NameSetIntCol+" "+EncodeColor(iv.Color),
			NameSetIntS+" "+formatFloat(iv.S),
		)
	}
	if len(s.Intervals) > 0 {
		lines = append(lines, NameSetIntSel+" "+strconv.Itoa(s.Selected))
	}
	lines = append(lines,
		NameSetMag+" "+EncodeDD(s.View.Mag),
		NameSetPos+" "+EncodePair(s.View.X, s.View.Y),
		NameSetIters+" "+strconv.FormatUint(uint64(s.Params.Iters), 10),
		NameSetAA+" "+strconv.FormatUint(uint64(s.Params.AA), 10),
		NameRecSetMag+" "+EncodeDD(s.Record.TargetMag),
		NameRecSetVel+" "+strconv.FormatFloat(s.Record.Velocity, 'g', -1, 64),
		NameRecSetFPS+" "+strconv.FormatUint(uint64(s.Record.FPS), 10),
		NameRecSetBitRate+" "+strconv.FormatUint(uint64(s.Record.BitRate), 10),
	)
	if s.Record.Filename != "" {
		lines = append(lines, NameRecSetFilename+" "+s.Record.Filename)
	}
	return lines
}

// SaveFile writes the serialized snapshot to path.
func SaveFile(path string, s Snapshot) error {
	data := strings.Join(Serialize(s), "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// ReadScript returns the command lines of a state file. Blank lines and
// lines starting with '#' are skipped.
func ReadScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return lines, nil
}
