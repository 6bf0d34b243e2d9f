package services

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type StorageService interface {
	SaveResume(file *multipart.FileHeader) (string, error)
	DeleteFile(filePath string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return errors.Wrap(err, "failed to create upload directory")
	}

	return nil
}

// SaveResume stores an uploaded resume PDF under a unique name and returns
// its path. Only .pdf uploads are accepted.
func (s *storageService) SaveResume(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", errors.Errorf("invalid file extension: %s", ext)
	}

	uniqueFilename := "resume_" + uuid.New().String() + ext
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create destination file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "failed to save file")
	}

	return filePath, nil
}

func (s *storageService) DeleteFile(filePath string) error {
	if err := os.Remove(filePath); err != nil {
		return errors.Wrap(err, "failed to delete file")
	}
	return nil
}
