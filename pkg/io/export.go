package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// Write encodes items in format f and writes them to w.
func Write(w io.Writer, f Format, items []item.Raw) error {
	if items == nil {
		items = []item.Raw{}
	}
	ds := dataset{Items: items}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(ds); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"id", "label", "value"}); err != nil {
			return err
		}
		for _, it := range items {
			rec := []string{it.ID, it.Label, strconv.FormatFloat(it.Value, 'g', -1, 64)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", f)
	}
	return nil
}

// Encode returns the encoded dataset as a byte slice.
func Encode(f Format, items []item.Raw) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export writes items to path, choosing the format from its extension. The
// file is written to a temporary sibling first and renamed into place.
func Export(fs afero.Fs, path string, items []item.Raw) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, items)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
