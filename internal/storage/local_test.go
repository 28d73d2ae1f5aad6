package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save("DSP1", "evidence.JPG", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/DSP1/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	fullPath := filepath.Join(s.BasePath(), filepath.FromSlash(strings.TrimPrefix(url, "/uploads")))
	content, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(content))

	require.NoError(t, s.Delete(url))
	_, err = os.Stat(fullPath)
	assert.True(t, os.IsNotExist(err))

	// 重复删除不报错
	assert.NoError(t, s.Delete(url))
}

func TestLocalStorage_SaveRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	url, err := s.Save("../../etc", "x.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/etc/"), url)
}

func TestLocalStorage_DeleteIgnoresForeignURL(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.NoError(t, s.Delete(""))
	assert.NoError(t, s.Delete("https://cdn.example.com/a.png"))
	// 路径会被清理到存储目录之内
	assert.NoError(t, s.Delete("/uploads/../../secret"))
}
