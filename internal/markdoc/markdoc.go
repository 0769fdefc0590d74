// Package markdoc rewrites Hugo shortcodes in a page body as Markdoc tags.
package markdoc

import (
	"fmt"
	"strings"

	"github.com/gohugoio/hugo/parser/pageparser"
)

// shortcode is one {{< ... >}} or {{% ... %}} occurrence in a body.
type shortcode struct {
	start, end int // byte range of the whole shortcode, delimiters included

	name  string
	inner string // interior with surrounding space and slashes removed

	closing     bool
	selfClosing bool
	paired      bool
}

type lexItem struct {
	typ        string
	start, end int
}

// Convert returns body with every shortcode turned into a Markdoc tag.
// Opening shortcodes with a matching close become block tags, all others
// become self-closing tags. Text outside shortcodes is copied as-is.
func Convert(body string) (string, error) {
	items, err := lex(body)
	if err != nil {
		return "", err
	}

	tags := collect(body, items)
	pair(tags)

	var out strings.Builder
	out.Grow(len(body))
	pos := 0
	for _, sc := range tags {
		out.WriteString(body[pos:sc.start])
		out.WriteString(sc.render())
		pos = sc.end
	}
	out.WriteString(body[pos:])
	return out.String(), nil
}

func lex(body string) ([]lexItem, error) {
	res, err := pageparser.ParseMain(strings.NewReader(body), pageparser.Config{})
	if err != nil {
		return nil, fmt.Errorf("markdoc: parse body: %w", err)
	}
	it := res.Iterator()
	src := res.Input()

	var items []lexItem
	for {
		item := it.Next()
		if item.Type.String() == "tError" {
			return nil, fmt.Errorf("markdoc: lex error at byte %d: %s", item.Pos(), item.Val(src))
		}
		if item.IsEOF() || item.IsDone() {
			break
		}
		start := item.Pos()
		items = append(items, lexItem{
			typ:   item.Type.String(),
			start: start,
			end:   start + len(item.Val(src)),
		})
	}
	return items, nil
}

func isLeftDelim(typ string) bool {
	return typ == "tLeftDelimScNoMarkup" || typ == "tLeftDelimScWithMarkup"
}

func isRightDelim(typ string) bool {
	return typ == "tRightDelimScNoMarkup" || typ == "tRightDelimScWithMarkup"
}

// collect pairs every left delimiter with the next right delimiter and reads
// the shortcode between them from body.
func collect(body string, items []lexItem) []*shortcode {
	var tags []*shortcode
	for i := 0; i < len(items); i++ {
		if !isLeftDelim(items[i].typ) {
			continue
		}
		j := i + 1
		for j < len(items) && !isRightDelim(items[j].typ) {
			j++
		}
		if j == len(items) {
			// unterminated, leave the rest as text
			break
		}

		sc := &shortcode{start: items[i].start, end: items[j].end}
		inner := strings.TrimSpace(body[items[i].end:items[j].start])
		if rest, ok := strings.CutPrefix(inner, "/"); ok {
			sc.closing = true
			inner = strings.TrimSpace(rest)
		} else if rest, ok := strings.CutSuffix(inner, "/"); ok {
			sc.selfClosing = true
			inner = strings.TrimSpace(rest)
		}
		sc.inner = inner
		if fields := strings.Fields(inner); len(fields) > 0 {
			sc.name = fields[0]
		}
		tags = append(tags, sc)
		i = j
	}
	return tags
}

// pair marks opening shortcodes that are closed later in the body. Opens left
// on the stack when an outer close arrives stay unpaired.
func pair(tags []*shortcode) {
	var open []*shortcode
	for _, sc := range tags {
		switch {
		case sc.selfClosing:
		case !sc.closing:
			open = append(open, sc)
		default:
			for k := len(open) - 1; k >= 0; k-- {
				if open[k].name == sc.name {
					open[k].paired = true
					open = open[:k]
					break
				}
			}
		}
	}
}

func (sc *shortcode) render() string {
	switch {
	case sc.closing && sc.name == "":
		return "{% / %}"
	case sc.closing:
		return "{% /" + sc.name + " %}"
	case sc.paired:
		return "{% " + sc.inner + " %}"
	default:
		return "{% " + sc.inner + " /%}"
	}
}
