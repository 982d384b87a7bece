package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Disk stores uploads under a single directory with uuid-based names.
type Disk struct {
	dir string
}

// NewDisk ensures dir exists and returns a Disk store rooted there.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Save(_ context.Context, originalName string, data []byte) (string, error) {
	path := filepath.Join(d.dir, uuid.New().String()+filepath.Ext(originalName))
	if err := os.WriteFile(path, data, 0o660); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (d *Disk) Copy(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	newPath := filepath.Join(d.dir, uuid.New().String()+filepath.Ext(path))
	if err := os.WriteFile(newPath, data, 0o660); err != nil {
		return "", fmt.Errorf("write %s: %w", newPath, err)
	}
	return newPath, nil
}

func (d *Disk) Delete(_ context.Context, path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (d *Disk) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
