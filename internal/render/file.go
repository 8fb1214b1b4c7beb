package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeImage renders into a temp file next to path and renames it into place.
// The temp file is closed and removed on every failure path.
func writeImage(path string, draw func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open image file: %w", err)
	}

	writer := bufio.NewWriter(file)
	if err := draw(writer); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush image: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}
