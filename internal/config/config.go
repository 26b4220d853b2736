package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

var (
	ErrBadPattern    = errors.New("invalid accessory pattern")
	ErrUnknownAction = errors.New("unknown keymap action")
	ErrBadDecoder    = errors.New("unknown decoder")
)

const (
	DecoderRules  = "rules"
	DecoderStream = "stream"
)

type EditorOptions struct {
	DefaultScope string `toml:"default-scope"`
	RootTag      string `toml:"root-tag"`
	Decoder      string `toml:"decoder"`
	Debug        bool   `toml:"debug"`
}

type Theme struct {
	Theme                     string `toml:"theme"`
	Foreground                string `toml:"foreground"`
	Background                string `toml:"background"`
	ToolbarForeground         string `toml:"toolbar-foreground"`
	ToolbarBackground         string `toml:"toolbar-background"`
	ToolbarActiveForeground   string `toml:"toolbar-active-foreground"`
	ToolbarActiveBackground   string `toml:"toolbar-active-background"`
	ToolbarDisabledForeground string `toml:"toolbar-disabled-foreground"`
	StatusForeground          string `toml:"status-foreground"`
	StatusBackground          string `toml:"status-background"`
}

// StyleConfig is the inline `style = { ... }` table of scopes and
// accessories.
type StyleConfig struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Bold       bool   `toml:"bold"`
	Italic     bool   `toml:"italic"`
	Underline  bool   `toml:"underline"`
	Strike     bool   `toml:"strike"`
	Dim        bool   `toml:"dim"`
	Reverse    bool   `toml:"reverse"`
}

func (s StyleConfig) Spec() style.Spec {
	return style.Spec(s)
}

type ScopeConfig struct {
	Key       string      `toml:"key"`
	Tag       string      `toml:"tag"`
	Label     string      `toml:"label"`
	Block     bool        `toml:"block"`
	Touch     bool        `toml:"touch"`
	Exclusive []string    `toml:"exclusive"`
	Disables  []string    `toml:"disables"`
	Style     StyleConfig `toml:"style"`
}

type AccessoryConfig struct {
	Name         string      `toml:"name"`
	Pattern      string      `toml:"pattern"`
	DetectLength int         `toml:"detect-length"`
	Style        StyleConfig `toml:"style"`
}

type Config struct {
	Editor      EditorOptions     `toml:"editor"`
	Theme       Theme             `toml:"theme"`
	Scopes      []ScopeConfig     `toml:"scope"`
	Accessories []AccessoryConfig `toml:"accessory"`
	Keymap      map[string]string `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			DefaultScope: "normal",
			RootTag:      "content",
			Decoder:      DecoderRules,
		},
		Theme: Theme{
			Foreground:                "#B3B1AD",
			Background:                "#0A0E14",
			ToolbarForeground:         "#B3B1AD",
			ToolbarBackground:         "#0F1419",
			ToolbarActiveForeground:   "#0A0E14",
			ToolbarActiveBackground:   "#E6B450",
			ToolbarDisabledForeground: "#3E4B59",
			StatusForeground:          "#B3B1AD",
			StatusBackground:          "#0F1419",
		},
		Scopes: []ScopeConfig{
			{Key: "normal", Tag: "p", Label: "Aa"},
			{Key: "bold", Tag: "b", Label: "B", Style: StyleConfig{Bold: true}},
			{Key: "italic", Tag: "i", Label: "I", Style: StyleConfig{Italic: true}},
			{Key: "underline", Tag: "u", Label: "U", Style: StyleConfig{Underline: true}},
			{Key: "strike", Tag: "s", Label: "S", Style: StyleConfig{Strike: true}},
			{
				Key: "heading", Tag: "h1", Label: "H", Block: true,
				Disables: []string{"bold", "italic"},
				Style:    StyleConfig{Foreground: "#FFD173", Bold: true},
			},
			{
				Key: "quote", Tag: "blockquote", Label: "“", Block: true,
				Disables: []string{"bold", "italic"},
				Style:    StyleConfig{Foreground: "#5C6773", Italic: true},
			},
			{
				Key: "link", Tag: "a", Label: "@", Touch: true,
				Style: StyleConfig{Foreground: "#59C2FF", Underline: true},
			},
		},
		Accessories: []AccessoryConfig{
			{Name: "mention", Pattern: `@\w+`, DetectLength: 20, Style: StyleConfig{Foreground: "#FFA759"}},
			{Name: "hashtag", Pattern: `#\w+`, DetectLength: 20, Style: StyleConfig{Foreground: "#BAE67E"}},
		},
		Keymap: map[string]string{
			"ctrl+b":      "toggle:bold",
			"ctrl+t":      "toggle:italic",
			"ctrl+u":      "toggle:underline",
			"ctrl+k":      "toggle:strike",
			"ctrl+e":      "toggle:heading",
			"ctrl+q":      "toggle:quote",
			"ctrl+n":      "toggle:normal",
			"ctrl+p":      "palette",
			"ctrl+s":      "save",
			"ctrl+c":      "quit",
			"esc":         "quit",
			"left":        "move_left",
			"right":       "move_right",
			"shift+left":  "select_left",
			"shift+right": "select_right",
			"ctrl+a":      "select_all",
			"up":          "move_up",
			"down":        "move_down",
			"home":        "line_start",
			"end":         "line_end",
			"backspace":   "delete_backward",
			"del":         "delete_forward",
			"enter":       "newline",
		},
	}
}

// Load reads config.toml from ConfigDir. A missing file yields Default.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile merges the file at path over Default. User [[scope]] and
// [[accessory]] lists replace the defaults wholesale; keymap entries merge
// per key.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if userCfg.Editor.DefaultScope != "" {
		cfg.Editor.DefaultScope = userCfg.Editor.DefaultScope
	}
	if userCfg.Editor.RootTag != "" {
		cfg.Editor.RootTag = userCfg.Editor.RootTag
	}
	if userCfg.Editor.Decoder != "" {
		cfg.Editor.Decoder = userCfg.Editor.Decoder
	}
	if md.IsDefined("editor", "debug") {
		cfg.Editor.Debug = userCfg.Editor.Debug
	}
	if md.IsDefined("editor", "root-tag") && userCfg.Editor.RootTag == "" {
		cfg.Editor.RootTag = ""
	}

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	if len(userCfg.Scopes) > 0 {
		cfg.Scopes = userCfg.Scopes
	}
	if md.IsDefined("accessory") {
		cfg.Accessories = userCfg.Accessories
	}
	for k, v := range userCfg.Keymap {
		if v == "" {
			delete(cfg.Keymap, k)
			continue
		}
		cfg.Keymap[k] = v
	}

	return cfg, cfg.Validate()
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.ToolbarForeground != "" {
		dst.ToolbarForeground = src.ToolbarForeground
	}
	if src.ToolbarBackground != "" {
		dst.ToolbarBackground = src.ToolbarBackground
	}
	if src.ToolbarActiveForeground != "" {
		dst.ToolbarActiveForeground = src.ToolbarActiveForeground
	}
	if src.ToolbarActiveBackground != "" {
		dst.ToolbarActiveBackground = src.ToolbarActiveBackground
	}
	if src.ToolbarDisabledForeground != "" {
		dst.ToolbarDisabledForeground = src.ToolbarDisabledForeground
	}
	if src.StatusForeground != "" {
		dst.StatusForeground = src.StatusForeground
	}
	if src.StatusBackground != "" {
		dst.StatusBackground = src.StatusBackground
	}
}

// Validate checks everything that would otherwise fail later at
// construction: scope definitions, patterns, decoder and keymap targets.
func (c Config) Validate() error {
	reg, err := c.Registry()
	if err != nil {
		return err
	}
	if _, err := c.Resolver(reg); err != nil {
		return err
	}
	if _, err := c.BufferAccessories(); err != nil {
		return err
	}
	switch c.Editor.Decoder {
	case DecoderRules, DecoderStream:
	default:
		return fmt.Errorf("%w: %q", ErrBadDecoder, c.Editor.Decoder)
	}
	for key, action := range c.Keymap {
		name, arg := ParseAction(action)
		if name == ActionToggle && !reg.Has(arg) {
			return fmt.Errorf("%w: %s = %q", ErrUnknownAction, key, action)
		}
	}
	return nil
}

// Registry builds the scope registry in file order.
func (c Config) Registry() (*scope.Registry, error) {
	scopes := make([]scope.Scope, 0, len(c.Scopes))
	for _, sc := range c.Scopes {
		scopes = append(scopes, scope.Scope{
			Key:       sc.Key,
			Tag:       sc.Tag,
			Block:     sc.Block,
			Touch:     sc.Touch,
			Exclusive: sc.Exclusive,
			Disables:  sc.Disables,
		})
	}
	return scope.NewRegistry(scopes, c.Editor.DefaultScope)
}

func (c Config) BaseStyle() tcell.Style {
	return tcell.StyleDefault.
		Foreground(style.ParseColor(c.Theme.Foreground, tcell.ColorDefault)).
		Background(style.ParseColor(c.Theme.Background, tcell.ColorDefault))
}

func (c Config) Resolver(reg *scope.Registry) (*style.ThemeResolver, error) {
	specs := make(map[string]style.Spec, len(c.Scopes))
	for _, sc := range c.Scopes {
		specs[sc.Key] = sc.Style.Spec()
	}
	return style.NewThemeResolver(reg, c.BaseStyle(), specs)
}

// BufferAccessories compiles the accessory patterns.
func (c Config) BufferAccessories() ([]buffer.Accessory, error) {
	out := make([]buffer.Accessory, 0, len(c.Accessories))
	for _, a := range c.Accessories {
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPattern, a.Name, err)
		}
		out = append(out, buffer.Accessory{
			Name:         a.Name,
			Pattern:      re,
			DetectLength: a.DetectLength,
			Style:        a.Style.Spec(),
		})
	}
	return out, nil
}

// Label returns the toolbar label of key, falling back to the key itself.
func (c Config) Label(key string) string {
	for _, sc := range c.Scopes {
		if sc.Key == key && sc.Label != "" {
			return sc.Label
		}
	}
	return key
}

const ActionToggle = "toggle"

// ParseAction splits "toggle:bold" into ("toggle", "bold").
func ParseAction(action string) (name, arg string) {
	name, arg, _ = strings.Cut(action, ":")
	return name, arg
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	md, err := toml.Decode(string(data), &wrap)
	if err != nil {
		return Theme{}, err
	}
	if md.IsDefined("theme") {
		return wrap.Theme, nil
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Theme{}, err
	}
	return t, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("VTEXT_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "vtext"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vtext"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
