package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gohugoio/hugo/parser/pageparser"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Front matter formats as reported by Hugo's page parser.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// WritePage writes a Hugo content file: front matter in the given format
// followed by body. Unknown formats fall back to YAML. Empty front matter is
// left out entirely.
func WritePage(w io.Writer, frontMatter map[string]any, format, body string) error {
	var buf bytes.Buffer
	if len(frontMatter) > 0 {
		if err := writeFrontMatter(&buf, frontMatter, format); err != nil {
			return err
		}
	}
	buf.WriteString(body)

	_, err := w.Write(buf.Bytes())
	return err
}

func writeFrontMatter(buf *bytes.Buffer, fm map[string]any, format string) error {
	switch format {
	case FormatTOML:
		b, err := toml.Marshal(fm)
		if err != nil {
			return fmt.Errorf("toml marshal: %w", err)
		}
		buf.WriteString("+++\n")
		buf.Write(b)
		buf.WriteString("+++\n")
	case FormatJSON:
		b, err := json.MarshalIndent(fm, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		buf.Write(b)
		buf.WriteString("\n")
	default:
		b, err := yaml.Marshal(fm)
		if err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(b)
		buf.WriteString("---\n")
	}
	return nil
}

// DumpTokens writes a plain-text listing of every token in raw, front matter
// included, for debugging.
func DumpTokens(w io.Writer, raw []byte) error {
	res, err := pageparser.ParseMain(bytes.NewReader(raw), pageparser.Config{})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	it := res.Iterator()
	src := res.Input()

	for {
		item := it.Next()
		if item.IsEOF() || item.IsDone() {
			break
		}
		start := item.Pos()
		val := item.Val(src)
		end := start + len(val)
		if _, err := fmt.Fprintf(w, "Type=%-25s Start=%-5d End=%-5d Val=%q\n",
			item.Type.String(), start, end, string(val)); err != nil {
			return err
		}
	}
	return nil
}
