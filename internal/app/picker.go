package app

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

func init() {
	algo.Init("default")
}

// picker narrows the scope keys down by a fuzzy query. Enter toggles the
// first match.
type picker struct {
	keys    []string
	query   []rune
	matches []string
	slab    *util.Slab
}

func newPicker(keys []string) *picker {
	p := &picker{keys: keys, slab: util.MakeSlab(16384, 1024)}
	p.filter()
	return p
}

func (p *picker) insert(r rune) {
	p.query = append(p.query, r)
	p.filter()
}

func (p *picker) backspace() {
	if len(p.query) == 0 {
		return
	}
	p.query = p.query[:len(p.query)-1]
	p.filter()
}

// selected is the best match, if any.
func (p *picker) selected() (string, bool) {
	if len(p.matches) == 0 {
		return "", false
	}
	return p.matches[0], true
}

func (p *picker) filter() {
	p.matches = p.matches[:0]
	if len(p.query) == 0 {
		p.matches = append(p.matches, p.keys...)
		return
	}
	pattern := []rune(strings.ToLower(string(p.query)))
	type scored struct {
		key   string
		score int
	}
	var found []scored
	for _, key := range p.keys {
		chars := util.ToChars([]byte(strings.ToLower(key)))
		res, _ := algo.FuzzyMatchV2(false, false, true, &chars, pattern, false, p.slab)
		if res.Start < 0 {
			continue
		}
		found = append(found, scored{key: key, score: int(res.Score)})
	}
	// ties keep registration order
	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })
	for _, f := range found {
		p.matches = append(p.matches, f.key)
	}
}

// line renders the picker for the status bar.
func (p *picker) line() string {
	var sb strings.Builder
	sb.WriteString(" scope: ")
	sb.WriteString(string(p.query))
	sb.WriteString(" |")
	for i, key := range p.matches {
		if i == 0 {
			sb.WriteString(" [" + key + "]")
			continue
		}
		sb.WriteString(" " + key)
	}
	if len(p.matches) == 0 {
		sb.WriteString(" no match")
	}
	return sb.String()
}
