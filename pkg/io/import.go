package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

type dataset struct {
	Items []item.Raw `json:"items" yaml:"items" toml:"items"`
}

// Read decodes a dataset in format f from r. An empty input yields an empty,
// non-nil slice. Read does not close r.
func Read(r io.Reader, f Format) ([]item.Raw, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	items, err := decode(data, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s dataset", f)
	}
	if items == nil {
		items = []item.Raw{}
	}
	return items, nil
}

func decode(data []byte, f Format) ([]item.Raw, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var ds dataset
	switch f {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if trimmed[0] == '[' {
			var items []item.Raw
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return nil, err
			}
			return items, nil
		}
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &ds); err != nil {
			return nil, err
		}
	case FormatCSV:
		return readCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return ds.Items, nil
}

func readCSV(r io.Reader) ([]item.Raw, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	cols := map[string]int{"id": -1, "label": -1, "value": -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("header: missing %q column", name)
		}
	}

	var items []item.Raw
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["value"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", line, err)
		}
		items = append(items, item.Raw{
			ID:    rec[cols["id"]],
			Label: rec[cols["label"]],
			Value: v,
		})
	}
	return items, nil
}

// Import reads the dataset file at path, choosing the format from its
// extension.
func Import(fs afero.Fs, path string) ([]item.Raw, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	items, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
