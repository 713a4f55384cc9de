package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

func readFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: %w", err)
	}
	defer f.Close()
	return readLimited(f, path, limit)
}

func readFS(files fs.FS, name string, limit int64) ([]byte, error) {
	if files == nil {
		return nil, fmt.Errorf("openapi loader: no filesystem configured for %s", name)
	}
	f, err := files.Open(name)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: %w", err)
	}
	defer f.Close()
	return readLimited(f, name, limit)
}

func readLimited(r io.Reader, name string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("openapi loader: read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, limit)
	}
	return data, nil
}
