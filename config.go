// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// config.go reduces Build's API footprint using functional options, the
// same pattern vu.Attr/vu.Config use for NewEngine: an Options struct
// with unexported fields and sensible defaults, and exported functions returning
// closures that mutate it.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

// defaultMaxTriangles matches the source's compile-time MAX_TRIANGLES.
const defaultMaxTriangles = 65536

// Options carries the two tuning knobs Build recognizes plus the
// logger it reports statistics and warnings through.
type Options struct {
	searchRadius uint32
	maxTriangles int
	logger       *slog.Logger
}

// optionDefaults provides reasonable defaults so Build runs even if no
// options are given.
var optionDefaults = Options{
	searchRadius: defaultSearchRadius,
	maxTriangles: defaultMaxTriangles,
	logger:       slog.Default(),
}

// Option overrides one Options attribute. For use with Build.
//
//	out, err := bvh.Build(tris, models,
//	    bvh.WithSearchRadius(24),
//	    bvh.WithMaxTriangles(1<<20),
//	)
type Option func(*Options)

// WithSearchRadius sets the PLOC nearest-neighbor window half-width.
// Larger values tend to produce better trees at O(N*R) cost per phase.
func WithSearchRadius(r uint32) Option {
	return func(o *Options) { o.searchRadius = r }
}

// WithMaxTriangles overrides the scene size limit Build enforces
// before doing any work.
func WithMaxTriangles(n int) Option {
	return func(o *Options) { o.maxTriangles = n }
}

// WithLogger overrides the slog.Logger Build reports statistics and
// warnings through. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// tuningFile is the on-disk shape FromYAML reads: the same two knobs
// Options exposes, so a deployment can pin them without recompiling.
type tuningFile struct {
	SearchRadius uint32 `yaml:"search_radius"`
	MaxTriangles int    `yaml:"max_triangles"`
}

// FromYAML loads the recognized tuning knobs (search_radius,
// max_triangles) from a YAML file and returns an Option applying
// whichever of them were present. Fields absent from the file are left
// at whatever Options already had rather than forced to zero.
func FromYAML(path string) (Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bvh: reading tuning file %s: %w", path, err)
	}
	var tf tuningFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("bvh: parsing tuning file %s: %w", path, err)
	}
	return func(o *Options) {
		if tf.SearchRadius != 0 {
			o.searchRadius = tf.SearchRadius
		}
		if tf.MaxTriangles != 0 {
			o.maxTriangles = tf.MaxTriangles
		}
	}, nil
}

// resolve applies opts over optionDefaults and returns the result.
func resolve(opts []Option) Options {
	o := optionDefaults
	for _, apply := range opts {
		apply(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
