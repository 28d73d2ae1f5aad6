package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage 将警告附带的照片保存在本地磁盘
type LocalStorage struct {
	basePath string
	baseURL  string // 例如 "/uploads"
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &LocalStorage{
		basePath: abs,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// Save 写入文件并返回可公开访问的 URL，文件名由 dspCode 和随机 uuid 组成
func (s *LocalStorage) Save(dspCode string, filename string, file io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	relPath := filepath.Join(filepath.Clean(string(filepath.Separator)+dspCode), name)
	fullPath := filepath.Join(s.basePath, relPath)

	if !strings.HasPrefix(fullPath, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path: %s", relPath)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + path.Clean("/"+filepath.ToSlash(relPath)), nil
}

// Delete 删除由 Save 返回的 URL 对应的文件，文件不存在时不报错
func (s *LocalStorage) Delete(url string) error {
	if url == "" || !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}

	relPath := filepath.FromSlash(strings.TrimPrefix(url, s.baseURL))
	fullPath := filepath.Join(s.basePath, filepath.Clean(relPath))
	if !strings.HasPrefix(fullPath, s.basePath+string(filepath.Separator)) {
		return fmt.Errorf("invalid file path: %s", url)
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
