package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/numberline/pkg/errors"
)

// Format is a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCSV  Format = "csv"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatCSV}

// ParseFormat converts a name such as "yaml" or "yml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q (must be json, yaml, toml or csv)", s)
}

// FormatFromPath picks the format from the file extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect dataset format of %s: no file extension", path)
	}
	return ParseFormat(ext)
}
