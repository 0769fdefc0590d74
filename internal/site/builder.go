// Package site translates a tree of Hugo Markdown content into Pig Latin.
//
// Each page is parsed with Hugo's own page parser so that only prose text is
// translated; shortcodes, front matter and other markup pass through intact.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hugopiglatin/internal/markdoc"
	"hugopiglatin/piglatin"
)

// Options control what a Builder reads and writes.
type Options struct {
	ContentDir string
	OutDir     string

	// Clean removes OutDir before building.
	Clean bool

	WriteJSON    bool
	WriteTokens  bool
	WriteMarkdoc bool

	// FrontMatterKeys lists top-level front matter keys whose string values
	// are translated along with the body.
	FrontMatterKeys []string
}

// Result summarizes a build.
type Result struct {
	Processed int
	Skipped   int
}

type Builder struct {
	opts      Options
	logger    *slog.Logger
	translate func(string) string
}

type Option func(*Builder)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithTranslator replaces the text transform, piglatin.Translate by default.
func WithTranslator(fn func(string) string) Option {
	return func(b *Builder) {
		b.translate = fn
	}
}

func NewBuilder(opts Options, options ...Option) *Builder {
	b := &Builder{
		opts:      opts,
		logger:    slog.Default(),
		translate: piglatin.Translate,
	}
	for _, o := range options {
		o(b)
	}
	return b
}

// Run walks ContentDir and writes one output folder per Markdown page,
// mirroring the folder structure: content/a/b/file.md -> out/a/b/file/.
func (b *Builder) Run(ctx context.Context) (Result, error) {
	var res Result

	if err := CheckDirs(b.opts.ContentDir, b.opts.OutDir); err != nil {
		return res, err
	}
	if b.opts.Clean {
		if err := os.RemoveAll(b.opts.OutDir); err != nil {
			return res, fmt.Errorf("remove %s: %w", b.opts.OutDir, err)
		}
	}
	if err := os.MkdirAll(b.opts.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("mkdir %s: %w", b.opts.OutDir, err)
	}

	outAbs, err := filepath.Abs(b.opts.OutDir)
	if err != nil {
		return res, fmt.Errorf("abs %s: %w", b.opts.OutDir, err)
	}

	err = filepath.WalkDir(b.opts.ContentDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// never read our own output back in
			if abs, err := filepath.Abs(path); err == nil && abs == outAbs {
				return fs.SkipDir
			}
			return nil
		}
		if !isSource(path) {
			b.logger.Debug("skipping file", "path", filepath.ToSlash(path))
			res.Skipped++
			return nil
		}

		if err := b.buildPage(path); err != nil {
			return err
		}
		res.Processed++
		return nil
	})
	if err != nil {
		return res, err
	}

	b.logger.Info("build finished", "processed", res.Processed, "skipped", res.Skipped)
	return res, nil
}

// CheckDirs rejects an output directory that is, or contains, the content
// directory. Cleaning such an output directory would delete the sources.
func CheckDirs(contentDir, outDir string) error {
	contentAbs, err := filepath.Abs(contentDir)
	if err != nil {
		return fmt.Errorf("abs %s: %w", contentDir, err)
	}
	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("abs %s: %w", outDir, err)
	}
	rel, err := filepath.Rel(outAbs, contentAbs)
	if err != nil {
		// different volumes
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %q contains %q", ErrUnsafeOutDir, outDir, contentDir)
	}
	return nil
}

// isSource reports whether path is a Markdown page we should translate.
func isSource(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") && !strings.HasSuffix(lower, ".translated.md")
}

func (b *Builder) buildPage(path string) error {
	rel, err := filepath.Rel(b.opts.ContentDir, path)
	if err != nil {
		return fmt.Errorf("rel path: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	targetDir := filepath.Join(b.opts.OutDir, filepath.Dir(rel), base)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", targetDir, err)
	}

	logger := b.logger.With("path", filepath.ToSlash(path))
	logger.Info("processing page", "target", filepath.ToSlash(targetDir))

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if b.opts.WriteTokens {
		dumpOut := filepath.Join(targetDir, "tokens.txt")
		if err := writeFile(dumpOut, func(w io.Writer) error { return DumpTokens(w, raw) }); err != nil {
			return fmt.Errorf("token dump %s: %w", path, err)
		}
		logger.Debug("wrote tokens", "file", filepath.ToSlash(dumpOut))
	}

	page, err := ParsePage(path, raw)
	if err != nil {
		return err
	}

	if b.opts.WriteJSON {
		jsonOut := filepath.Join(targetDir, base+".json")
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		if err := os.WriteFile(jsonOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", jsonOut, err)
		}
		logger.Debug("wrote page document", "file", filepath.ToSlash(jsonOut), "bytes", len(data))
	}

	body, err := page.TranslateBody(b.translate)
	if err != nil {
		return fmt.Errorf("translate %s: %w", path, err)
	}
	fm := b.translateFrontMatter(page.FrontMatter)

	mdOut := filepath.Join(targetDir, base+".translated.md")
	if err := writeFile(mdOut, func(w io.Writer) error {
		return WritePage(w, fm, page.FrontMatterFormat, body)
	}); err != nil {
		return err
	}
	logger.Debug("wrote translated page", "file", filepath.ToSlash(mdOut))

	if b.opts.WriteMarkdoc {
		mdocBody, err := markdoc.Convert(body)
		if err != nil {
			return fmt.Errorf("markdoc %s: %w", path, err)
		}
		mdocOut := filepath.Join(targetDir, base+".mdoc")
		if err := writeFile(mdocOut, func(w io.Writer) error {
			return WritePage(w, fm, page.FrontMatterFormat, mdocBody)
		}); err != nil {
			return err
		}
		logger.Debug("wrote markdoc page", "file", filepath.ToSlash(mdocOut))
	}
	return nil
}

// translateFrontMatter returns a shallow copy of fm with the configured
// string values translated.
func (b *Builder) translateFrontMatter(fm map[string]any) map[string]any {
	if len(fm) == 0 || len(b.opts.FrontMatterKeys) == 0 {
		return fm
	}
	out := make(map[string]any, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	for _, key := range b.opts.FrontMatterKeys {
		if s, ok := out[key].(string); ok {
			out[key] = b.translate(s)
		}
	}
	return out
}

func writeFile(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
