package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives exported files.
type Sink interface {
	Write(name string, data []byte) error
}

// DirSink writes files into a directory, creating it on first use.
type DirSink struct {
	Dir string
}

func (s DirSink) Write(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, filepath.Base(name)), data, 0o644)
}

// File is one exported file held in memory.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// MemorySink collects files in memory.
type MemorySink struct {
	mu    sync.Mutex
	files []File
}

func (s *MemorySink) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, File{Name: name, Data: append([]byte(nil), data...)})
	return nil
}

// Files returns the collected files in write order.
func (s *MemorySink) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]File(nil), s.files...)
}

// WriteZip streams files as a zip archive.
func WriteZip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("zip %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("zip %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}
