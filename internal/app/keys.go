package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// keyString names ev the way keymap entries do: "ctrl+b", "shift+left",
// "enter", or the rune itself.
func keyString(ev *tcell.EventKey) string {
	mod := ev.Modifiers()
	// Handle alt combinations first
	if mod&tcell.ModAlt != 0 {
		if ev.Key() == tcell.KeyRune {
			return "alt+" + strings.ToLower(string(ev.Rune()))
		}
		if name := arrowName(ev.Key()); name != "" {
			return "alt+" + name
		}
	}
	if mod&tcell.ModCtrl != 0 && ev.Key() == tcell.KeyRune {
		return "ctrl+" + strings.ToLower(string(ev.Rune()))
	}
	if mod&tcell.ModShift != 0 {
		if name := arrowName(ev.Key()); name != "" {
			return "shift+" + name
		}
	}
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	// These share codes with ctrl+h, ctrl+i, ctrl+m and ctrl+[ and must be
	// checked before ctrlKeyName.
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyTab:
		return "tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyEscape:
		return "esc"
	}
	if name := ctrlKeyName(ev.Key()); name != "" {
		return name
	}
	if name := arrowName(ev.Key()); name != "" {
		return name
	}
	switch ev.Key() {
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyDelete:
		return "del"
	case tcell.KeyBacktab:
		return "shift+tab"
	}
	return ""
}

func arrowName(k tcell.Key) string {
	switch k {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	}
	return ""
}

func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	return ""
}
