package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/config"
	"github.com/kobzarvs/vtext/internal/editor"
	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/session"
	"github.com/kobzarvs/vtext/internal/style"
)

// button is a toolbar toggle for one scope.
type button struct {
	key      string
	label    string
	selected bool
	enabled  bool
	tap      func()
	// screen columns from the last render
	x0, x1 int
}

func (b *button) SetSelected(v bool) { b.selected = v }
func (b *button) SetEnabled(v bool)  { b.enabled = v }

// View is the terminal front end of one editor: a toolbar row, the text
// area and a status line.
type View struct {
	cfg  config.Config
	ed   *editor.Editor
	sess *session.Manager

	path   string
	dirty  bool
	status string

	// selection as anchor and caret; equal when nothing is selected
	anchor, head int

	buttons []*button
	rows    []row
	scroll  int
	picker  *picker

	styleMain     tcell.Style
	styleToolbar  tcell.Style
	styleActive   tcell.Style
	styleDisabled tcell.Style
	styleStatus   tcell.Style
}

// NewView builds a view over an empty document. sess may be nil.
func NewView(cfg config.Config, sess *session.Manager) (*View, error) {
	v := &View{cfg: cfg, sess: sess}
	ed, err := editor.New(cfg, v)
	if err != nil {
		return nil, err
	}
	v.ed = ed

	th := cfg.Theme
	v.styleMain = cfg.BaseStyle()
	v.styleToolbar = tcell.StyleDefault.
		Foreground(style.ParseColor(th.ToolbarForeground, tcell.ColorDefault)).
		Background(style.ParseColor(th.ToolbarBackground, tcell.ColorDefault))
	v.styleActive = v.styleToolbar.
		Foreground(style.ParseColor(th.ToolbarActiveForeground, tcell.ColorDefault)).
		Background(style.ParseColor(th.ToolbarActiveBackground, tcell.ColorDefault)).
		Bold(true)
	v.styleDisabled = v.styleToolbar.
		Foreground(style.ParseColor(th.ToolbarDisabledForeground, tcell.ColorDefault))
	v.styleStatus = tcell.StyleDefault.
		Foreground(style.ParseColor(th.StatusForeground, tcell.ColorDefault)).
		Background(style.ParseColor(th.StatusBackground, tcell.ColorDefault))

	for _, key := range ed.Registry().Keys() {
		b := &button{key: key, label: cfg.Label(key)}
		b.tap = ed.Bind(key, b)
		v.buttons = append(v.buttons, b)
	}
	ed.Subscribe(func(ev editor.Event) {
		if ev.Kind == editor.TextChanged {
			v.dirty = true
		}
	})
	return v, nil
}

func (v *View) Editor() *editor.Editor {
	return v.ed
}

// Open loads path into the editor. A missing file starts an empty
// document that is created on save.
func (v *View) Open(path string) error {
	v.path = path
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		v.status = "new file"
		return nil
	}
	if err != nil {
		return err
	}
	if err := v.ed.ApplyMarkup(string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	v.dirty = false
	if v.sess != nil {
		if st, ok := v.sess.FileState(v.absPath()); ok {
			v.selectRange(st.Caret, st.Caret+st.SelectionLength)
		}
	}
	logger.Info("opened", "path", path, "runes", v.ed.Len())
	return nil
}

func (v *View) absPath() string {
	abs, err := filepath.Abs(v.path)
	if err != nil {
		return v.path
	}
	return abs
}

// Save writes the document as markup.
func (v *View) Save() error {
	if v.path == "" {
		return errors.New("no file name")
	}
	if err := os.WriteFile(v.path, []byte(v.ed.Export()+"\n"), 0o644); err != nil {
		return err
	}
	v.dirty = false
	v.rememberCaret()
	logger.Info("saved", "path", v.path)
	return nil
}

// Close records the caret for the next session.
func (v *View) Close() {
	v.rememberCaret()
	if v.sess != nil {
		if err := v.sess.Save(); err != nil {
			logger.Warn("session save failed", "error", err)
		}
	}
}

func (v *View) rememberCaret() {
	if v.sess == nil || v.path == "" {
		return
	}
	sel := v.ed.Selection()
	v.sess.SetFileState(v.absPath(), session.FileState{Caret: sel.Location, SelectionLength: sel.Length})
}

// HandleTouch shows a tapped accessory.
func (v *View) HandleTouch(name, value string) {
	v.status = name + " " + value
}

// HandleLink shows a tapped link.
func (v *View) HandleLink(u *url.URL) {
	v.status = "link " + u.String()
}

func (v *View) selectRange(anchor, head int) {
	n := v.ed.Len()
	v.anchor = min(max(anchor, 0), n)
	v.head = min(max(head, 0), n)
	lo, hi := min(v.anchor, v.head), max(v.anchor, v.head)
	v.ed.SetSelection(buffer.Range{Location: lo, Length: hi - lo})
}

func (v *View) syncCaret() {
	loc := v.ed.Selection().Location
	v.anchor, v.head = loc, loc
}

// HandleKey runs the keymap action bound to ev, or types it. It returns
// true when the view should close.
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	if v.picker != nil {
		v.handlePicker(ev)
		return false
	}
	key := keyString(ev)
	if action, ok := v.cfg.Keymap[key]; ok {
		v.status = ""
		return v.run(action)
	}
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) == 0 {
		v.insert(string(ev.Rune()))
	}
	return false
}

func (v *View) handlePicker(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		v.picker = nil
	case tcell.KeyEnter:
		key, ok := v.picker.selected()
		v.picker = nil
		if ok && !v.ed.ToggleScope(key) {
			v.status = key + " is disabled here"
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.picker.backspace()
	case tcell.KeyRune:
		v.picker.insert(ev.Rune())
	}
}

func (v *View) insert(s string) {
	if err := v.ed.InsertText(s); err != nil {
		logger.Error("insert failed", "error", err)
		return
	}
	v.syncCaret()
}

func (v *View) run(action string) bool {
	name, arg := config.ParseAction(action)
	text := v.ed.Text()
	switch name {
	case config.ActionToggle:
		if !v.ed.ToggleScope(arg) {
			v.status = arg + " is disabled here"
		}
	case "palette":
		v.picker = newPicker(v.ed.Registry().Keys())
	case "quit":
		return true
	case "save":
		if err := v.Save(); err != nil {
			v.status = err.Error()
		} else {
			v.status = "saved " + v.path
		}
	case "move_left":
		if v.anchor != v.head {
			v.collapse(min(v.anchor, v.head))
		} else {
			v.collapse(prevBoundary(text, v.head))
		}
	case "move_right":
		if v.anchor != v.head {
			v.collapse(max(v.anchor, v.head))
		} else {
			v.collapse(nextBoundary(text, v.head))
		}
	case "select_left":
		v.selectRange(v.anchor, prevBoundary(text, v.head))
	case "select_right":
		v.selectRange(v.anchor, nextBoundary(text, v.head))
	case "select_all":
		v.selectRange(0, v.ed.Len())
	case "move_up", "move_down":
		v.moveVertical(name == "move_down")
	case "line_start":
		v.collapse(lineStart([]rune(text), v.head))
	case "line_end":
		v.collapse(lineEnd([]rune(text), v.head))
	case "delete_backward":
		if err := v.ed.DeleteBackward(); err != nil {
			logger.Error("delete failed", "error", err)
		}
		v.syncCaret()
	case "delete_forward":
		if err := v.ed.DeleteForward(); err != nil {
			logger.Error("delete failed", "error", err)
		}
		v.syncCaret()
	case "newline":
		v.insert("\n")
	default:
		v.status = "unknown action " + action
	}
	return false
}

func (v *View) collapse(loc int) {
	v.selectRange(loc, loc)
}

func (v *View) moveVertical(down bool) {
	if len(v.rows) == 0 {
		return
	}
	ri, col := caretPos(v.rows, v.head)
	if down {
		ri++
	} else {
		ri--
	}
	if ri < 0 || ri >= len(v.rows) {
		return
	}
	v.collapse(locAt(v.rows[ri], col))
}

func lineStart(text []rune, loc int) int {
	for loc > 0 && text[loc-1] != '\n' {
		loc--
	}
	return loc
}

func lineEnd(text []rune, loc int) int {
	for loc < len(text) && text[loc] != '\n' {
		loc++
	}
	return loc
}

// HandleMouse taps toolbar buttons and places the caret on clicks in the
// text area.
func (v *View) HandleMouse(ev *tcell.EventMouse) {
	if ev.Buttons() != tcell.Button1 {
		return
	}
	x, y := ev.Position()
	if y == 0 {
		for _, b := range v.buttons {
			if x >= b.x0 && x < b.x1 {
				if b.enabled {
					b.tap()
				}
				return
			}
		}
		return
	}
	ri := y - 1 + v.scroll
	if ri < 0 || ri >= len(v.rows) {
		return
	}
	v.collapse(locAt(v.rows[ri], x))
}

func (v *View) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	s.SetStyle(v.styleMain)
	s.Clear()

	v.renderToolbar(s, w)

	viewHeight := max(h-2, 0)
	v.rows = wrap(v.ed.Text(), w)
	cy, cx := caretPos(v.rows, v.head)
	if cy < v.scroll {
		v.scroll = cy
	}
	if viewHeight > 0 && cy >= v.scroll+viewHeight {
		v.scroll = cy - viewHeight + 1
	}
	lo, hi := min(v.anchor, v.head), max(v.anchor, v.head)
	for y := 0; y < viewHeight; y++ {
		ri := v.scroll + y
		if ri >= len(v.rows) {
			break
		}
		x := 0
		for _, c := range v.rows[ri].cells {
			st := v.styleMain
			if ds, ok := v.ed.StyleAt(c.loc); ok {
				st = ds
			}
			if c.loc >= lo && c.loc < hi {
				st = st.Reverse(true)
			}
			x = drawString(s, x, y+1, c.str, st)
		}
	}

	if h >= 2 {
		v.renderStatusline(s, w, h-1, cy, cx)
	}
	if sy := cy - v.scroll + 1; viewHeight > 0 && sy >= 1 && sy <= viewHeight {
		s.ShowCursor(min(cx, w-1), sy)
	} else {
		s.HideCursor()
	}
	s.Show()
}

func (v *View) renderToolbar(s tcell.Screen, w int) {
	clearLine(s, 0, w, v.styleToolbar)
	x := 0
	for _, b := range v.buttons {
		st := v.styleToolbar
		switch {
		case !b.enabled:
			st = v.styleDisabled
		case b.selected:
			st = v.styleActive
		}
		b.x0 = x
		x = drawString(s, x, 0, " "+b.label+" ", st)
		b.x1 = x
		x++
	}
}

func (v *View) renderStatusline(s tcell.Screen, w, y, row, col int) {
	name := v.path
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	dirty := ""
	if v.dirty {
		dirty = "*"
	}
	left := fmt.Sprintf(" %s%s | %s ", name, dirty, strings.Join(v.ed.ActiveKeys(), "+"))
	if v.status != "" {
		left += "| " + v.status + " "
	}
	if v.picker != nil {
		left = v.picker.line()
	}
	right := fmt.Sprintf(" Ln %d, Col %d ", row+1, col+1)
	line := composeStatusLine(left, right, w)
	for x, r := range line {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, v.styleStatus)
	}
}

// drawString draws str cluster by cluster from x and returns the column
// after it.
func drawString(s tcell.Screen, x, y int, str string, st tcell.Style) int {
	g := uniseg.NewGraphemes(str)
	for g.Next() {
		r := g.Runes()
		s.SetContent(x, y, r[0], r[1:], st)
		x += max(g.Width(), 1)
	}
	return x
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := max(width-len(leftRunes)-len(rightRunes), 0)
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := 0; i < spaceCount; i++ {
		line = append(line, ' ')
	}
	line = append(line, rightRunes...)
	return line
}
