package io

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

var sample = []item.Raw{
	{ID: "c", Label: "Freezing, at sea level", Value: 0},
	{ID: "a", Label: "Boiling point", Value: 100},
	{ID: "b", Label: "Absolute zero", Value: -273.15},
}

func TestRoundTrip(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := Encode(f, sample)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Read(strings.NewReader(string(data)), f)
			if err != nil {
				t.Fatalf("Read: %v\n%s", err, data)
			}
			if !slices.Equal(got, sample) {
				t.Errorf("round trip = %+v, want %+v", got, sample)
			}
		})
	}
}

func TestRead(t *testing.T) {
	want := []item.Raw{{ID: "a", Label: "A", Value: 1.5}, {ID: "b", Label: "B", Value: -2}}

	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json object", FormatJSON, `{"items":[{"id":"a","label":"A","value":1.5},{"id":"b","label":"B","value":-2}]}`},
		{"json array", FormatJSON, ` [{"id":"a","label":"A","value":1.5},{"id":"b","label":"B","value":-2}]`},
		{"yaml", FormatYAML, "items:\n  - id: a\n    label: A\n    value: 1.5\n  - id: b\n    label: B\n    value: -2\n"},
		{"toml", FormatTOML, "[[items]]\nid = \"a\"\nlabel = \"A\"\nvalue = 1.5\n\n[[items]]\nid = \"b\"\nlabel = \"B\"\nvalue = -2.0\n"},
		{"csv", FormatCSV, "id,label,value\na,A,1.5\nb,B,-2\n"},
		{"csv reordered columns", FormatCSV, "value, label, id\n1.5,A,a\n-2,B,b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("Read = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	for _, f := range Formats {
		got, err := Read(strings.NewReader("  \n"), f)
		if err != nil {
			t.Errorf("%s: Read(empty) error: %v", f, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("%s: Read(empty) = %v, want empty slice", f, got)
		}
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"bad json", FormatJSON, `{"items": [`},
		{"bad yaml", FormatYAML, "items: [unclosed"},
		{"bad toml", FormatTOML, "[[items]\n"},
		{"csv missing column", FormatCSV, "id,label\na,A\n"},
		{"csv bad value", FormatCSV, "id,label,value\na,A,lots\n"},
		{"unknown format", Format("xml"), "<items/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Read error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"points.json", FormatJSON, false},
		{"dir/points.YML", FormatYAML, false},
		{"points.yaml", FormatYAML, false},
		{"points.toml", FormatTOML, false},
		{"points.csv", FormatCSV, false},
		{"points", "", true},
		{"points.xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestImportExport(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := Export(fs, "/data/points.yaml", sample); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/data/points.yaml.tmp"); ok {
		t.Error("temporary file left behind")
	}

	got, err := Import(fs, "/data/points.yaml")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !slices.Equal(got, sample) {
		t.Errorf("Import = %+v, want %+v", got, sample)
	}

	if _, err := Import(fs, "/data/missing.json"); err == nil {
		t.Error("Import(missing) succeeded")
	}
	if err := Export(fs, "/data/points", sample); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Export(no extension) = %v, want INVALID_FORMAT", err)
	}
}
