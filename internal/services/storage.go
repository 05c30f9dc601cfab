package services

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidFileType = errors.New("only PDF files are accepted")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
)

var pdfMagic = []byte("%PDF-")

// StorageService keeps business-plan uploads on disk for the time it takes to
// extract their text. It only accepts PDFs up to a fixed size.
type StorageService interface {
	SaveFile(file *multipart.FileHeader, prefix string) (string, string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
	MaxFileSize() int64
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

func (s *storageService) MaxFileSize() int64 {
	return s.maxFileSize
}

// SaveFile checks the upload is a PDF within the size limit, stores it under a
// unique name and returns that name and its full path.
func (s *storageService) SaveFile(file *multipart.FileHeader, prefix string) (string, string, error) {
	if file.Size > s.maxFileSize {
		return "", "", fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, file.Size, s.maxFileSize)
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidFileType, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// the extension is client supplied, the header is not
	reader := bufio.NewReader(src)
	head, err := reader.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return "", "", fmt.Errorf("%w: missing PDF header", ErrInvalidFileType)
	}

	uniqueFilename := fmt.Sprintf("%s_%s.pdf", prefix, uuid.New().String())
	filePath := s.GetFilePath(uniqueFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(reader, s.maxFileSize+1))
	closeErr := dst.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("failed to save file: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("failed to save file: %w", closeErr)
	case written > s.maxFileSize:
		err = fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	if err != nil {
		_ = os.Remove(filePath)
		return "", "", err
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	if err := os.Remove(s.GetFilePath(filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
