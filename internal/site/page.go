package site

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gohugoio/hugo/parser/pageparser"
)

var (
	ErrInvalidSpan = errors.New("site: invalid text span")
	ErrInvalidUTF8 = errors.New("site: text span is not valid UTF-8")

	ErrUnsafeOutDir = errors.New("site: output directory contains the content directory")
)

/*
A token created by Hugo's pageparser package. For example,
the opening delimiter of a shortcode becomes a token.
*/
type Token struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Val   string `json:"val"`
}

// TextSpan is the byte range of a prose token in the page body.
type TextSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Page is a parsed content file. It is also the document written as
// <base>.json next to the translated page.
type Page struct {
	SourcePath        string         `json:"sourcePath"`
	FrontMatter       map[string]any `json:"frontMatter"`
	FrontMatterFormat string         `json:"frontMatterFormat,omitempty"`
	ContentRaw        string         `json:"contentRaw"`
	ContentTok        []Token        `json:"contentTokens"`
	ContentTextSpans  []TextSpan     `json:"contentTextSpans"`
}

// ParsePage splits raw into front matter and body and tokenizes the body.
// Only the body is tokenized, so front matter never ends up in a span.
func ParsePage(path string, raw []byte) (*Page, error) {
	cf, err := pageparser.ParseFrontMatterAndContent(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse front matter %s: %w", path, err)
	}
	// Content is only filled in after a front matter block.
	if cf.FrontMatterFormat == "" {
		cf.Content = raw
	}

	toks, err := tokenize(cf.Content)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", path, err)
	}

	p := &Page{
		SourcePath:        path,
		FrontMatter:       cf.FrontMatter,
		FrontMatterFormat: string(cf.FrontMatterFormat),
		ContentRaw:        string(cf.Content),
		ContentTok:        toks,
	}
	for _, tok := range toks {
		if tok.Type == "tText" && tok.End > tok.Start {
			p.ContentTextSpans = append(p.ContentTextSpans, TextSpan{
				Start: tok.Start,
				End:   tok.End,
				Text:  tok.Val,
			})
		}
	}
	return p, nil
}

func tokenize(src []byte) ([]Token, error) {
	res, err := pageparser.ParseMain(bytes.NewReader(src), pageparser.Config{})
	if err != nil {
		return nil, err
	}
	it := res.Iterator()
	input := res.Input()

	var toks []Token
	for {
		item := it.Next()
		if item.Type.String() == "tError" {
			return nil, fmt.Errorf("lex error at byte %d", item.Pos())
		}
		if item.IsEOF() || item.IsDone() {
			break
		}
		start := item.Pos()
		val := item.Val(input)
		toks = append(toks, Token{
			Type:  item.Type.String(),
			Start: start,
			End:   start + len(val),
			Val:   string(val),
		})
	}
	return toks, nil
}

// TranslateBody runs fn over every text span and splices the results back
// into the body by byte range. Spans must be ordered and non-overlapping.
func (p *Page) TranslateBody(fn func(string) string) (string, error) {
	body := p.ContentRaw

	var out strings.Builder
	out.Grow(len(body) + len(body)/2)
	pos := 0
	for _, span := range p.ContentTextSpans {
		if span.Start < pos || span.Start > span.End || span.End > len(body) {
			return "", fmt.Errorf("%w: %d..%d (len=%d)", ErrInvalidSpan, span.Start, span.End, len(body))
		}
		text := body[span.Start:span.End]
		if !utf8.ValidString(text) {
			return "", fmt.Errorf("%w: %d..%d", ErrInvalidUTF8, span.Start, span.End)
		}
		out.WriteString(body[pos:span.Start])
		out.WriteString(fn(text))
		pos = span.End
	}
	out.WriteString(body[pos:])
	return out.String(), nil
}
