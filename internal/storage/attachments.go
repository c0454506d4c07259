// Package storage keeps issue attachments on local disk.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
	"github.com/yukikurage/issue-tracker/internal/constants"
)

var (
	ErrNotPDF      = errors.New("only PDF files are allowed")
	ErrTooLarge    = errors.New("file size exceeds 2 MB limit")
	ErrInvalidPath = errors.New("attachment path is outside the upload directory")
)

// AttachmentStore saves uploaded PDFs under a single directory. Recorded paths
// have the form "uploads/<name>" and never contain user supplied names.
type AttachmentStore struct {
	dir     string
	maxSize int64
}

// NewAttachmentStore creates the upload directory if it is missing.
func NewAttachmentStore(dir string) (*AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &AttachmentStore{dir: dir, maxSize: constants.MaxAttachmentSize}, nil
}

// Validate checks extension and declared size without touching the disk.
func (s *AttachmentStore) Validate(header *multipart.FileHeader) error {
	if !strings.EqualFold(filepath.Ext(header.Filename), constants.AttachmentExtension) {
		return ErrNotPDF
	}
	if header.Size > s.maxSize {
		return ErrTooLarge
	}
	return nil
}

// Save validates header and moves its content into the upload directory,
// returning the recorded path. Nothing is left on disk when it fails.
func (s *AttachmentStore) Save(header *multipart.FileHeader) (string, error) {
	if err := s.Validate(header); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	// The declared size can lie; bound the copy as well.
	n, err := io.Copy(tmp, io.LimitReader(src, s.maxSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if n > s.maxSize {
		return "", ErrTooLarge
	}

	name := fileName(header.Filename)
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to move upload: %w", err)
	}

	return constants.AttachmentURLPrefix + name, nil
}

// Path resolves a recorded path to a file inside the upload directory.
func (s *AttachmentStore) Path(recorded string) (string, error) {
	name := strings.TrimPrefix(recorded, constants.AttachmentURLPrefix)
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a recorded attachment. A missing file is not an error.
func (s *AttachmentStore) Remove(recorded string) error {
	path, err := s.Path(recorded)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	return nil
}

// fileName derives a collision resistant name from a time-seeded id and the
// original file name.
func fileName(original string) string {
	sum := sha256.Sum256([]byte(xid.New().String() + original))
	return hex.EncodeToString(sum[:16]) + constants.AttachmentExtension
}
