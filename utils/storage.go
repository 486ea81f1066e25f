package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/domain"
)

// Storage accepts an uploaded blob and returns a retrievable URL.
// A failure here aborts only the image-attachment step, never the
// operation that triggered it.
type Storage interface {
	Save(file *multipart.FileHeader, subdir string) (string, error)
}

// LocalStorage writes uploads under a base directory served at
// BaseURL/uploads. Filenames are randomized to avoid collisions and
// path games from client-supplied names.
type LocalStorage struct {
	BaseDir string
	BaseURL string
}

func NewLocalStorage(cfg *config.Config) *LocalStorage {
	return &LocalStorage{
		BaseDir: cfg.UploadDir,
		BaseURL: cfg.BaseURL,
	}
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func (s *LocalStorage) Save(file *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidArgument, ext)
	}

	dir := filepath.Join(s.BaseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", s.BaseURL, subdir, name), nil
}
