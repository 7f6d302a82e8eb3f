package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// DocumentStorage отвечает за файловое хранилище артефактов документов:
// сгенерированные PDF и загруженные вложения.
type DocumentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewDocumentStorage создаёт файловое хранилище.
func NewDocumentStorage(rootPath string, maxUploadMB int64) (*DocumentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &DocumentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// SavePDF сохраняет сгенерированный PDF документа и возвращает относительный путь.
func (s *DocumentStorage) SavePDF(ctx context.Context, documentID uuid.UUID, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.rootPath, "pdf")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог pdf: %w", err)
	}

	fileName := fmt.Sprintf("%s_%d.pdf", documentID.String(), time.Now().UnixNano())
	tempPath := filepath.Join(dir, fileName+".tmp")
	targetPath := filepath.Join(dir, fileName)

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: не удалось записать pdf: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return filepath.Join("pdf", fileName), nil
}

// SaveUpload сохраняет загруженное вложение с проверкой типа по сигнатуре
// и возвращает относительный путь и определённый MIME-тип.
func (s *DocumentStorage) SaveUpload(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	limited := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	data, err := io.ReadAll(&limited)
	if err != nil {
		return "", "", fmt.Errorf("storage: ошибка чтения вложения: %w", err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", "", fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", "", fmt.Errorf("storage: не удалось определить тип файла")
	}

	ownerDir := filepath.Join(s.rootPath, "uploads", ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", "", fmt.Errorf("storage: не удалось создать каталог владельца: %w", err)
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), safeName)
	targetPath := filepath.Join(ownerDir, fileName)

	if err := os.WriteFile(targetPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("storage: не удалось записать файл: %w", err)
	}

	relative := filepath.Join("uploads", ownerID.String(), fileName)
	return relative, kind.MIME.Value, nil
}

// Read возвращает содержимое файла по относительному пути.
func (s *DocumentStorage) Read(ctx context.Context, relativePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.rootPath, relativePath))
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	return data, nil
}

// Delete удаляет файл из хранилища.
func (s *DocumentStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, relativePath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "attachment"
	}
	return name
}
