package memory

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/util"
)

const gzipExt = ".gz"

// path returns where name is stored, with the gzip suffix when compression
// is on.
func (b *Backend) path(name string) string {
	p := filepath.Join(b.cfg.OutputDir, name)
	if b.cfg.CompressOutput {
		p += gzipExt
	}
	return p
}

// readJSON decodes name into v. It reports false when the file does not
// exist. A plain file is still read when compression is on, so turning the
// option on does not lose data.
func (b *Backend) readJSON(name string, v any) (bool, error) {
	candidates := []string{b.path(name)}
	if b.cfg.CompressOutput {
		candidates = append(candidates, filepath.Join(b.cfg.OutputDir, name))
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", p, err)
		}

		if strings.HasSuffix(p, gzipExt) {
			zr, err := gzip.NewReader(bytes.NewReader(data))
			if err != nil {
				return false, fmt.Errorf("open gzip %s: %w", p, err)
			}
			data, err = io.ReadAll(zr)
			if err != nil {
				return false, fmt.Errorf("decompress %s: %w", p, err)
			}
		}

		if err := json.Unmarshal(data, v); err != nil {
			return false, fmt.Errorf("decode %s: %w", p, err)
		}
		return true, nil
	}
	return false, nil
}

// writeJSON encodes v to name through a temporary file and a rename.
func (b *Backend) writeJSON(name string, v any) error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if b.cfg.CompressOutput {
		var buf bytes.Buffer
		gzWriter := gzip.NewWriter(&buf)
		if _, err := gzWriter.Write(data); err != nil {
			return err
		}
		if err := gzWriter.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}

	target := b.path(name)
	tmp, err := os.CreateTemp(b.cfg.OutputDir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

// remove deletes name in both plain and compressed form.
func (b *Backend) remove(name string) error {
	for _, p := range []string{filepath.Join(b.cfg.OutputDir, name), filepath.Join(b.cfg.OutputDir, name+gzipExt)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// Backup copies the stored documents into the Backups folder with a UTC
// timestamp in their names and returns the folder.
func (b *Backend) Backup() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dir := filepath.Join(b.cfg.OutputDir, BackupDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := time.Now()
	copied := 0
	for _, name := range []string{LibraryFileName, SortOrderFileName} {
		src := b.path(name)
		data, err := os.ReadFile(src)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", src, err)
		}

		dst := util.BackupPath(dir, filepath.Base(src), now)
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return "", fmt.Errorf("write backup %s: %w", dst, err)
		}
		copied++
	}

	if copied == 0 {
		return "", fmt.Errorf("nothing to back up in %s", b.cfg.OutputDir)
	}
	return dir, nil
}
