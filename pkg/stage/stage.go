// Package stage implements the document stage: a local object-storage
// location for bulk PDF upload. Files must be staged uncompressed because
// the downstream layout parser rejects compressed input.
package stage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
)

// Magic prefixes of the compressed formats the parser rejects.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte{0x50, 0x4b, 0x03, 0x04}
)

// File describes one staged object.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Stage is a directory-backed document stage.
type Stage struct {
	root   string
	logger *zap.Logger
}

// New creates a stage rooted at dir, creating the directory if needed.
func New(root string, logger *zap.Logger) (*Stage, error) {
	if root == "" {
		return nil, fmt.Errorf("stage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create stage root: %w", err)
	}
	return &Stage{root: root, logger: logger.Named("stage")}, nil
}

// Root returns the stage root directory.
func (s *Stage) Root() string {
	return s.root
}

// Put stages an uploaded file. Compressed input (gzip, zip) is rejected
// with apperrors.ErrCompressedUpload.
func (s *Stage) Put(name string, r io.Reader) (*File, error) {
	name = filepath.Base(name)
	if name == "" || name == "." {
		return nil, fmt.Errorf("invalid file name")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if isCompressed(data) {
		return nil, fmt.Errorf("stage %s: %w", name, apperrors.ErrCompressedUpload)
	}

	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write staged file: %w", err)
	}

	s.logger.Info("File staged",
		zap.String("file", name),
		zap.Int("bytes", len(data)))

	return &File{Name: name, Path: path, Size: int64(len(data))}, nil
}

// List returns all staged PDF files, sorted by name.
func (s *Stage) List() ([]File, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list stage: %w", err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat staged file %s: %w", e.Name(), err)
		}
		files = append(files, File{
			Name: e.Name(),
			Path: filepath.Join(s.root, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Read returns the raw bytes of a staged file.
func (s *Stage) Read(name string) ([]byte, error) {
	path := filepath.Join(s.root, filepath.Base(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("staged file %s: %w", name, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("read staged file: %w", err)
	}
	return data, nil
}

func isCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic) || bytes.HasPrefix(data, zipMagic)
}
