package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore はファイルシステムに保存し、公開URLを返す。
type LocalStore struct {
	root          string
	publicBaseURL string
}

func NewLocalStore(root, publicBaseURL string) *LocalStore {
	return &LocalStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Put はobjectPathに書き込む。contentTypeは拡張子で表現済みなので使わない
func (s *LocalStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := path.Clean("/" + filepath.ToSlash(objectPath))
	if clean == "/" {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}

	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	return s.URL(clean), nil
}

// 公開URL
func (s *LocalStore) URL(objectPath string) string {
	return s.publicBaseURL + path.Clean("/"+objectPath)
}
