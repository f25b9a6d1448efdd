package sheet

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// Export file names inside a FileSource directory.
const (
	InfoFile       = "sheet.json"
	HouseholdsFile = "households.json"
	DeltasFile     = "deltas.json"
	DeltasLogFile  = "deltas.jsonl"
)

// FileSource reads a sheet export directory.
type FileSource struct {
	Dir string
}

// NewFileSource returns a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Info reads sheet.json. A missing SheetId falls back to the directory name.
func (s *FileSource) Info(ctx context.Context) (Info, error) {
	var info Info
	if err := readJSON(filepath.Join(s.Dir, InfoFile), &info); err != nil {
		return Info{}, fmt.Errorf("reading sheet info: %w", err)
	}
	if info.ID == "" {
		info.ID = filepath.Base(s.Dir)
	}
	return info, nil
}

// Households reads households.json, a RecId to household id object.
func (s *FileSource) Households(ctx context.Context) (analyze.HouseholdIndex, error) {
	index := analyze.HouseholdIndex{}
	err := readJSON(filepath.Join(s.Dir, HouseholdsFile), &index)
	if os.IsNotExist(err) {
		return index, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading households: %w", err)
	}
	return index, nil
}

// Deltas reads deltas.json, or deltas.jsonl when there is no array file.
func (s *FileSource) Deltas(ctx context.Context, afterVersion int) ([]analyze.Delta, error) {
	var deltas []analyze.Delta
	err := readJSON(filepath.Join(s.Dir, DeltasFile), &deltas)
	if os.IsNotExist(err) {
		deltas, err = readJSONL(filepath.Join(s.Dir, DeltasLogFile))
	}
	if err != nil {
		return nil, fmt.Errorf("reading deltas: %w", err)
	}
	return after(deltas, afterVersion), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// readJSONL decodes one delta per line. Blank lines are skipped; a bad line
// is an error since the log is the only copy of the data.
func readJSONL(path string) ([]analyze.Delta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []analyze.Delta
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var d analyze.Delta
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		out = append(out, d)
	}
	return out, scanner.Err()
}
