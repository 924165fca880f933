package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedFile reports whether filename carries an extension from the
// allow-list. The check is case-insensitive and requires a dot.
func allowedFile(filename string, allowed []string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}

	ext := strings.ToLower(filename[idx+1:])
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// saveUploadedFile writes the upload to dir under a unique name and returns
// the full path. The caller is responsible for removing the file.
func saveUploadedFile(src multipart.File, filename, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(dir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path, nil
}
