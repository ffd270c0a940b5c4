// Package config persists the conversion options between runs and reads
// process settings from the environment.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wirthmage/internal/processor"
)

// Params is the persisted set of conversion options. Enumerations are
// stored by name (e.g. "CARD", "INDEXED_4BIT").
type Params struct {
	InputFiles   []string               `json:"input_files" yaml:"input_files"`
	OutputDir    string                 `json:"output_dir" yaml:"output_dir"`
	ImageSize    processor.ImageSize    `json:"image_size" yaml:"image_size"`
	OutputX2     bool                   `json:"output_x2" yaml:"output_x2"`
	OutputX4     bool                   `json:"output_x4" yaml:"output_x4"`
	ImageType    processor.ImageFormat  `json:"image_type" yaml:"image_type"`
	IndexedColor processor.IndexedColor `json:"indexed_color" yaml:"indexed_color"`
	ColorMask    bool                   `json:"color_mask" yaml:"color_mask"`
	OutlineStyle processor.OutlineStyle `json:"outline_style" yaml:"outline_style"`
}

func Default(outputDir string) Params {
	return Params{
		InputFiles:   []string{},
		OutputDir:    outputDir,
		ImageSize:    processor.SizeAsIs,
		ImageType:    processor.FormatBMP,
		IndexedColor: processor.IndexedNone,
		OutlineStyle: processor.OutlineNone,
	}
}

// Request builds the conversion request for one source path.
func (p Params) Request(path string) processor.Request {
	return processor.Request{
		Path:         path,
		OutputDir:    p.OutputDir,
		Size:         p.ImageSize,
		X2:           p.OutputX2,
		X4:           p.OutputX4,
		Format:       p.ImageType,
		IndexedColor: p.IndexedColor,
		ColorMask:    p.ColorMask,
		Outline:      p.OutlineStyle,
	}
}

// AddInputs adds paths to the working set as absolute paths. A path whose
// file name is already present replaces the earlier entry.
func (p *Params) AddInputs(paths ...string) {
	for _, path := range paths {
		path = absPath(path)
		name := filepath.Base(path)
		replaced := false
		for i, existing := range p.InputFiles {
			if filepath.Base(existing) == name {
				p.InputFiles[i] = path
				replaced = true
				break
			}
		}
		if !replaced {
			p.InputFiles = append(p.InputFiles, path)
		}
	}
}

// RemoveInputs drops paths from the working set.
func (p *Params) RemoveInputs(paths ...string) {
	drop := make(map[string]bool, len(paths))
	for _, path := range paths {
		drop[absPath(path)] = true
	}
	kept := p.InputFiles[:0]
	for _, path := range p.InputFiles {
		if !drop[absPath(path)] {
			kept = append(kept, path)
		}
	}
	p.InputFiles = kept
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// fieldDecoders maps each persisted key to a setter that decodes into a
// fresh value and only assigns it on success.
func (p *Params) fieldDecoders() map[string]func(decode func(any) error) {
	return map[string]func(decode func(any) error){
		"input_files":   field(&p.InputFiles),
		"output_dir":    field(&p.OutputDir),
		"image_size":    field(&p.ImageSize),
		"output_x2":     field(&p.OutputX2),
		"output_x4":     field(&p.OutputX4),
		"image_type":    field(&p.ImageType),
		"indexed_color": field(&p.IndexedColor),
		"color_mask":    field(&p.ColorMask),
		"outline_style": field(&p.OutlineStyle),
	}
}

func field[T any](dst *T) func(decode func(any) error) {
	return func(decode func(any) error) {
		var v T
		if err := decode(&v); err == nil {
			*dst = v
		}
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the params at path over defaults. A missing file yields the
// defaults with no error. An unreadable or malformed file also yields the
// defaults, together with an error the caller may log. Unknown keys, null
// values and values that do not decode are skipped one by one, and an empty
// output_dir falls back to the default.
func Load(path string, defaults Params) (Params, error) {
	params := defaults

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("read params: %w", err)
	}

	decoders := params.fieldDecoders()

	if isYAML(path) {
		var raw map[string]yaml.Node
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return defaults, fmt.Errorf("parse params: %w", err)
		}
		for key, node := range raw {
			if node.ShortTag() == "!!null" {
				continue
			}
			if set, ok := decoders[key]; ok {
				set(node.Decode)
			}
		}
	} else {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return defaults, fmt.Errorf("parse params: %w", err)
		}
		for key, value := range raw {
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				continue
			}
			if set, ok := decoders[key]; ok {
				set(func(v any) error { return json.Unmarshal(value, v) })
			}
		}
	}

	if params.InputFiles == nil {
		params.InputFiles = []string{}
	}
	if params.OutputDir == "" {
		params.OutputDir = defaults.OutputDir
	}
	return params, nil
}

// Save writes params to path, creating the parent directory if needed.
func Save(path string, params Params) error {
	if params.InputFiles == nil {
		params.InputFiles = []string{}
	}

	var data []byte
	if isYAML(path) {
		out, err := yaml.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		data = out
	} else {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(params); err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		data = buf.Bytes()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
