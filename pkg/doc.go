// Package pkg provides the core libraries for numberline label layout.
//
// # Overview
//
// numberline places labeled values on a horizontal number line. Each item is
// drawn as a bullet at its value followed by its label; labels that would
// collide are stacked into rows beneath the axis. The pkg directory is
// organized into these areas:
//
//  1. [scale], [item], [layout] - Domain logic (value mapping, bounding
//     boxes, stacking)
//  2. [measure] - Text metrics (font, heuristic and terminal-cell providers)
//  3. [store], [cache] - Infrastructure (item repositories, artifact cache)
//  4. [pipeline] - Orchestration (snapshot → layout → render)
//  5. [render] - Canvas geometry, SVG/PNG/PDF/JSON sinks
//  6. [io], [config] - Dataset files and configuration
//
// # Architecture
//
// The typical data flow through numberline:
//
//	Repository snapshot ([store])
//	         ↓
//	    [item] package (scale values, measure labels)
//	         ↓
//	    [layout] package (sort by value, stack colliding boxes)
//	         ↓
//	    [render] package (frame geometry + sinks)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Lay out a handful of items and render them as SVG:
//
//	import (
//	    "github.com/matzehuels/numberline/pkg/config"
//	    "github.com/matzehuels/numberline/pkg/item"
//	    "github.com/matzehuels/numberline/pkg/layout"
//	    "github.com/matzehuels/numberline/pkg/pipeline"
//	    "github.com/matzehuels/numberline/pkg/scale"
//	)
//
//	cfg := config.DefaultLayout()
//	mapper, _ := scale.NewMapper(1, cfg.MinTickSpacing)
//	metrics, _ := pipeline.NewProvider(pipeline.MetricsFont, cfg)
//
//	res, err := pipeline.LayoutItems([]item.Raw{
//	    {ID: "a", Label: "Launch", Value: 0},
//	    {ID: "b", Label: "Beta", Value: 0.4},
//	}, mapper, metrics, cfg, layout.Cascade)
//
//	artifacts, err := pipeline.Render(res, mapper, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// Or use [pipeline.Runner] over a [store.Repository], which adds artifact
// caching and observability hooks:
//
//	runner := pipeline.NewRunner(store.NewMemory(), nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Formats: []string{"svg", "png"}})
//
// # Strategies
//
// [layout.Cascade] is the default two-level sweep: an item goes on the top
// row when it clears every top-row item, beneath the previously placed item
// when it collides with it, and otherwise back on the top row even if that
// overlaps an earlier top-row item. [layout.Shelf] places each item on the
// first row with room for it and never overlaps.
//
// # Error Handling
//
// Errors carry a code from [errors]: INVALID_CONFIGURATION for a bad scale
// factor or layout constant, VALIDATION_FAILED for malformed items,
// NOT_FOUND and CONFLICT from repositories, INVALID_FORMAT for unknown
// formats and strategies. A failed layout pass returns no partial result.
//
// # Configuration
//
// [config.Load] reads a TOML file over [config.Default]. The CLI looks for
// $XDG_CONFIG_HOME/numberline/config.toml.
//
// [scale]: github.com/matzehuels/numberline/pkg/scale
// [item]: github.com/matzehuels/numberline/pkg/item
// [layout]: github.com/matzehuels/numberline/pkg/layout
// [layout.Cascade]: github.com/matzehuels/numberline/pkg/layout#Cascade
// [layout.Shelf]: github.com/matzehuels/numberline/pkg/layout#Shelf
// [measure]: github.com/matzehuels/numberline/pkg/measure
// [store]: github.com/matzehuels/numberline/pkg/store
// [store.Repository]: github.com/matzehuels/numberline/pkg/store#Repository
// [cache]: github.com/matzehuels/numberline/pkg/cache
// [pipeline]: github.com/matzehuels/numberline/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/numberline/pkg/pipeline#Runner
// [render]: github.com/matzehuels/numberline/pkg/render
// [io]: github.com/matzehuels/numberline/pkg/io
// [config]: github.com/matzehuels/numberline/pkg/config
// [config.Load]: github.com/matzehuels/numberline/pkg/config#Load
// [config.Default]: github.com/matzehuels/numberline/pkg/config#Default
// [errors]: github.com/matzehuels/numberline/pkg/errors
package pkg
