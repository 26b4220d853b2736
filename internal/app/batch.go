package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kobzarvs/vtext/internal/config"
	"github.com/kobzarvs/vtext/internal/editor"
)

// Format decodes src and encodes it again, which normalizes tag order,
// merges split elements and drops text outside registered tags.
func Format(cfg config.Config, src string) (string, error) {
	ed, err := editor.New(cfg, nil)
	if err != nil {
		return "", err
	}
	if err := ed.ApplyMarkup(src); err != nil {
		return "", err
	}
	return ed.Export(), nil
}

var (
	runsOffsetColor    = color.New(color.FgHiBlack)
	runsScopeColor     = color.New(color.FgBlue)
	runsAccessoryColor = color.New(color.FgMagenta)
	runsTextColor      = color.New(color.FgGreen)
)

// WriteRuns prints one line per styled run of src: offset, length, scopes,
// accessory and text. Columns are colored unless color.NoColor is set.
func WriteRuns(w io.Writer, cfg config.Config, src string) error {
	ed, err := editor.New(cfg, nil)
	if err != nil {
		return err
	}
	if err := ed.ApplyMarkup(src); err != nil {
		return err
	}
	reg := ed.Registry()
	for _, r := range ed.Runs() {
		keys := strings.Join(reg.KeysOf(r.Attr.Scopes), "+")
		if keys == "" {
			keys = "-"
		}
		acc := "-"
		if r.Attr.Accessory != "" {
			acc = r.Attr.Accessory + "=" + r.Attr.Value
		}
		_, err := fmt.Fprintf(w, "%s  %s %s %s\n",
			runsOffsetColor.Sprintf("%5d %5d", r.Location, r.Length),
			runsScopeColor.Sprintf("%-16s", keys),
			runsAccessoryColor.Sprintf("%-12s", acc),
			runsTextColor.Sprintf("%q", r.Text))
		if err != nil {
			return err
		}
	}
	return nil
}
