// Package jsonfile implements storage.Backend on top of plain JSON files.
// A document (namespace, key) lives at <dataRoot>/<namespace>/<key>.json, or at
// <dataRoot>/<key>.json for the root namespace.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/memohai/mediaclip/internal/storage"
)

const fileExt = ".json"

// Provider stores documents as files under a data root.
type Provider struct {
	dataRoot string
}

// New creates a file provider rooted at dataRoot. The directory is created
// lazily on first write.
func New(dataRoot string) (*Provider, error) {
	abs, err := filepath.Abs(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	return &Provider{dataRoot: abs}, nil
}

// Root returns the absolute data root.
func (p *Provider) Root() string {
	return p.dataRoot
}

// Read returns the file content for the document, or storage.ErrNotExist.
func (p *Provider) Read(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := p.hostPath(namespace, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotExist
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Write replaces the document file atomically by writing a sibling temp
// file and renaming it over the target.
func (p *Provider) Write(ctx context.Context, namespace, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := p.hostPath(namespace, key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// Close is a no-op; files are not held open between calls.
func (p *Provider) Close() error {
	return nil
}

// hostPath converts a namespace and key into the file path under the data root.
func (p *Provider) hostPath(namespace, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("invalid document key: %q", key)
	}
	if err := checkSegment(key); err != nil {
		return "", err
	}
	parts := []string{p.dataRoot}
	if ns := strings.TrimSpace(namespace); ns != "" {
		for _, seg := range strings.Split(ns, "/") {
			if err := checkSegment(seg); err != nil {
				return "", err
			}
			parts = append(parts, seg)
		}
	}
	parts = append(parts, key+fileExt)
	joined := filepath.Join(parts...)
	if !strings.HasPrefix(joined, p.dataRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes data root: %s/%s", namespace, key)
	}
	return joined, nil
}

func checkSegment(seg string) error {
	switch {
	case seg == "" || seg == "." || seg == "..":
		return fmt.Errorf("path traversal is forbidden: %q", seg)
	case strings.ContainsAny(seg, `/\`):
		return fmt.Errorf("path separator is forbidden: %q", seg)
	case filepath.IsAbs(seg):
		return fmt.Errorf("absolute path is forbidden: %q", seg)
	}
	return nil
}
