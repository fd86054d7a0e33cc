// Package files copies résumés, attachments and photos next to the database.
// Only the resulting paths are stored with the candidate; deleting a
// candidate leaves its files in place.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotAFile = errors.New("not a regular file")

type Store struct {
	AttachmentsDir string
	PhotosDir      string
}

func New(attachmentsDir, photosDir string) *Store {
	return &Store{AttachmentsDir: attachmentsDir, PhotosDir: photosDir}
}

// SaveResume copies a résumé into the attachments directory.
func (s *Store) SaveResume(src string) (string, error) {
	return copyInto(s.AttachmentsDir, src)
}

func (s *Store) SaveAttachment(src string) (string, error) {
	return copyInto(s.AttachmentsDir, src)
}

// SaveAttachments copies every source in order and returns the stored paths.
// It stops at the first failure.
func (s *Store) SaveAttachments(srcs []string) ([]string, error) {
	out := make([]string, 0, len(srcs))
	for _, src := range srcs {
		if strings.TrimSpace(src) == "" {
			continue
		}
		p, err := s.SaveAttachment(src)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) SavePhoto(src string) (string, error) {
	return copyInto(s.PhotosDir, src)
}

// Check reports the first source that is missing or not a regular file.
// Blank sources are ignored. Callers use it to fail before copying anything.
func Check(srcs ...string) error {
	for _, src := range srcs {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		if err := checkSource(src); err != nil {
			return err
		}
	}
	return nil
}

func checkSource(src string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", src, ErrNotAFile)
	}
	return nil
}

// copyInto copies src to dir/<base name of src>, replacing a file of the same
// name. Copying a file onto itself is a no-op.
func copyInto(dir, src string) (string, error) {
	src = strings.TrimSpace(src)
	if err := checkSource(src); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dstPath := filepath.Join(dir, filepath.Base(src))
	if same, _ := samePath(src, dstPath); same {
		return dstPath, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	tmp := dstPath + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dstPath); err != nil {
		return "", err
	}
	return dstPath, nil
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
