package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Saver hands finished CSV text to wherever downloads go.
type Saver interface {
	// Save stores csv under name and returns where it went.
	Save(name, csv string) (string, error)
}

// FileSaver writes each download as a file in Dir.
type FileSaver struct {
	Dir string
}

// Save implements Saver.
func (s FileSaver) Save(name, csv string) (string, error) {
	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		return "", fmt.Errorf("saving %s: %w", name, err)
	}
	return path, nil
}

// StreamSaver writes downloads to W, each preceded by a "# name" line.
type StreamSaver struct {
	W io.Writer
}

// Save implements Saver.
func (s StreamSaver) Save(name, csv string) (string, error) {
	if _, err := fmt.Fprintf(s.W, "# %s\n%s", name, csv); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return "stream", nil
}

// PickSaver returns a FileSaver when dir is an existing writable directory,
// and a StreamSaver on fallback otherwise.
func PickSaver(dir string, fallback io.Writer) Saver {
	if dir != "" && writableDir(dir) {
		return FileSaver{Dir: dir}
	}
	return StreamSaver{W: fallback}
}

func writableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".deltalens-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// SaveAll saves every downloadable table in root.
func SaveAll(s Saver, root *Element) ([]string, error) {
	var saved []string
	for _, t := range root.Tables() {
		if t.Download == "" {
			continue
		}
		where, err := s.Save(t.Download, t.CSV())
		if err != nil {
			return saved, err
		}
		saved = append(saved, where)
	}
	return saved, nil
}
