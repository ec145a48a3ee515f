// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/graphload/core"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the graph declaration at path.
// Every failure is reported as a *core.ConfigParseError.
func Load(path string) (*core.GraphConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.ConfigParseError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, err := Parse(f, FormatFromPath(path))
	if err != nil {
		var parseErr *core.ConfigParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, err
	}

	resolveDataPaths(cfg, filepath.Dir(path))
	return cfg, nil
}

// Format selects the encoding of a graph declaration.
type Format int

const (
	// FormatJSON is the default declaration encoding.
	FormatJSON Format = iota
	// FormatYAML is selected by a .yaml or .yml extension.
	FormatYAML
)

// FormatFromPath picks the declaration format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a graph declaration.
// Unknown fields are rejected.
func Parse(r io.Reader, format Format) (*core.GraphConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &core.ConfigParseError{Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &core.ConfigParseError{Err: errors.New("empty document")}
	}

	var cfg core.GraphConfig
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	}
	if err != nil {
		return nil, &core.ConfigParseError{Err: err}
	}

	if len(cfg.Nodes) == 0 && len(cfg.Edges) == 0 {
		return nil, &core.ConfigParseError{Err: errors.New("no nodes or edges declared")}
	}

	if err := core.ValidateGraphConfig(&cfg); err != nil {
		return nil, &core.ConfigParseError{Err: err}
	}

	return &cfg, nil
}

func resolveDataPaths(cfg *core.GraphConfig, baseDir string) {
	resolve := func(e *core.EntityDefinition) {
		if !filepath.IsAbs(e.PathToData) {
			e.PathToData = filepath.Join(baseDir, e.PathToData)
		}
	}
	for _, node := range cfg.Nodes {
		resolve(&node.EntityDefinition)
	}
	for _, edge := range cfg.Edges {
		resolve(&edge.EntityDefinition)
	}
}

// Summary describes a loaded config for logs.
func Summary(cfg *core.GraphConfig) string {
	return fmt.Sprintf("%d node types, %d edge types", len(cfg.Nodes), len(cfg.Edges))
}
