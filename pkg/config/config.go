// Package config loads diagram style and editor settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File is the on-disk settings document.
type File struct {
	Canvas Canvas     `yaml:"canvas"`
	Node   NodeStyle  `yaml:"node"`
	Edge   EdgeStyle  `yaml:"edge"`
	Label  LabelStyle `yaml:"label"`
	Editor Editor     `yaml:"editor"`
}

// Canvas sets the output size and background.
type Canvas struct {
	Width      int    `yaml:"width" validate:"gte=0,lte=16384"`
	Height     int    `yaml:"height" validate:"gte=0,lte=16384"`
	Background string `yaml:"background" validate:"omitempty,color"`
}

// NodeStyle sets how nodes are drawn. Fill and Stroke accept any CSS
// colour or the "by-id" palette.
type NodeStyle struct {
	Size        float64 `yaml:"size" validate:"gte=0,lte=1000"`
	BorderWidth float64 `yaml:"border_width" validate:"gte=0,lte=100"`
	Fill        string  `yaml:"fill" validate:"omitempty,color"`
	Stroke      string  `yaml:"stroke" validate:"omitempty,color"`
	Shape       string  `yaml:"shape" validate:"omitempty,oneof=circle square"`
}

// EdgeStyle sets how edges are drawn. Color accepts any CSS colour or the
// "by-source" palette.
type EdgeStyle struct {
	Width float64 `yaml:"width" validate:"gte=0,lte=100"`
	Color string  `yaml:"color" validate:"omitempty,color"`
}

// LabelStyle sets node label text. Text is "label", "id" or "none".
type LabelStyle struct {
	Text  string  `yaml:"text" validate:"omitempty,oneof=label id none"`
	Size  float64 `yaml:"size" validate:"gte=0,lte=200"`
	Color string  `yaml:"color" validate:"omitempty,color"`
}

// Editor holds persistent editor settings.
type Editor struct {
	FileType string `yaml:"file_type" validate:"omitempty,oneof=png svg"`
	LastDir  string `yaml:"last_dir"`
}

// Default returns the built-in settings.
func Default() File {
	cwd, _ := os.Getwd()
	return File{
		Canvas: Canvas{Width: 800, Height: 600, Background: "#ffffff"},
		Node: NodeStyle{
			Size:        35,
			BorderWidth: 2,
			Fill:        "#e3f2fd",
			Stroke:      "#1565c0",
			Shape:       "circle",
		},
		Edge:   EdgeStyle{Width: 2, Color: "#666666"},
		Label:  LabelStyle{Text: "label", Size: 14, Color: "#333333"},
		Editor: Editor{FileType: "png", LastDir: cwd},
	}
}

// Path returns the path to the user settings file
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nodegraph.yaml"
	}
	return filepath.Join(home, ".nodegraph.yaml")
}

// Load reads settings from path over the defaults. A missing file yields
// the defaults.
func Load(path string) (File, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings over the defaults and validates them.
func Parse(data []byte) (File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg File) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	content := append([]byte("# nodegraph configuration\n"), data...)
	return os.WriteFile(path, content, 0644)
}

// fillDefaults replaces zero values left by an explicit empty entry.
func (f *File) fillDefaults() {
	def := Default()
	if f.Canvas.Width == 0 {
		f.Canvas.Width = def.Canvas.Width
	}
	if f.Canvas.Height == 0 {
		f.Canvas.Height = def.Canvas.Height
	}
	if f.Node.Size == 0 {
		f.Node.Size = def.Node.Size
	}
	if f.Label.Size == 0 {
		f.Label.Size = def.Label.Size
	}
	if f.Editor.FileType == "" {
		f.Editor.FileType = def.Editor.FileType
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("color", func(fl validator.FieldLevel) bool {
			_, err := parseColorSpec(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Validate checks every field against its constraints.
func (f File) Validate() error {
	err := getValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "File."))
	switch e.Tag() {
	case "color":
		return fmt.Sprintf("%s: %q is not a colour", field, e.Value())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s: must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("%s: failed %s", field, e.Tag())
	}
}
