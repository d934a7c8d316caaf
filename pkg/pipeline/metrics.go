package pipeline

import (
	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/measure"
)

// Text metrics providers selectable by name.
const (
	MetricsFont      = "font"
	MetricsHeuristic = "heuristic"
	MetricsCells     = "cells"
)

// ValidMetrics is the set of supported provider names.
var ValidMetrics = map[string]bool{
	MetricsFont:      true,
	MetricsHeuristic: true,
	MetricsCells:     true,
}

// ValidateMetrics checks that a metrics provider name is valid.
func ValidateMetrics(name string) error {
	if !ValidMetrics[name] {
		return errors.New(errors.ErrCodeInvalidConfiguration, "invalid metrics: %q (must be one of: font, heuristic, cells)", name)
	}
	return nil
}

// NewProvider returns the named text metrics provider, wrapped in an LRU
// cache. The font provider measures with Go Regular at c.FontSize.
func NewProvider(name string, c config.Layout) (measure.Provider, error) {
	var inner measure.Provider
	switch name {
	case MetricsFont, "":
		f, err := measure.DefaultFont(c.FontSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
		}
		inner = f
	case MetricsHeuristic:
		inner = measure.NewHeuristic(c.FontSize, c.LineHeight)
	case MetricsCells:
		// Terminal cells are already cheap to measure.
		return measure.Cells{}, nil
	default:
		return nil, ValidateMetrics(name)
	}
	cached, err := measure.NewCached(inner, measure.DefaultCacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create metrics cache")
	}
	return cached, nil
}
