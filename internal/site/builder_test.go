package site

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContent(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestBuilder_Run(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outDir := filepath.Join(root, "out")

	writeContent(t, contentDir, "posts/hello.md",
		"---\ntitle: Hello World\ndraft: false\n---\nHello {{< badge text=\"NEW\" >}} world.\n")
	writeContent(t, contentDir, "about.md", "Apples and strings.\n")
	writeContent(t, contentDir, "notes.txt", "not markdown")
	writeContent(t, contentDir, "posts/old.translated.md", "Ellohay.\n")

	b := NewBuilder(Options{
		ContentDir:      contentDir,
		OutDir:          outDir,
		Clean:           true,
		WriteJSON:       true,
		WriteTokens:     true,
		WriteMarkdoc:    true,
		FrontMatterKeys: []string{"title"},
	}, WithLogger(quietLogger()))

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Skipped)

	pageDir := filepath.Join(outDir, "posts", "hello")

	translated := readFile(t, filepath.Join(pageDir, "hello.translated.md"))
	assert.Contains(t, translated, "title: Ellohay Orldway\n")
	assert.Contains(t, translated, "draft: false\n")
	assert.Contains(t, translated, "Ellohay {{< badge text=\"NEW\" >}} orldway.\n")

	mdoc := readFile(t, filepath.Join(pageDir, "hello.mdoc"))
	assert.Contains(t, mdoc, "Ellohay {% badge text=\"NEW\" /%} orldway.\n")

	var doc Page
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(pageDir, "hello.json"))), &doc))
	assert.Equal(t, "Hello World", doc.FrontMatter["title"])
	assert.NotEmpty(t, doc.ContentTextSpans)

	assert.FileExists(t, filepath.Join(pageDir, "tokens.txt"))

	about := readFile(t, filepath.Join(outDir, "about", "about.translated.md"))
	assert.Equal(t, "Applesway andway ingsstray.\n", about)
}

func TestBuilder_RunMinimalOutput(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outDir := filepath.Join(root, "out")
	writeContent(t, contentDir, "page.md", "+++\ntitle = \"Page\"\n+++\nThe end.\n")

	res, err := NewBuilder(Options{ContentDir: contentDir, OutDir: outDir},
		WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	pageDir := filepath.Join(outDir, "page")
	assert.NoFileExists(t, filepath.Join(pageDir, "page.json"))
	assert.NoFileExists(t, filepath.Join(pageDir, "tokens.txt"))
	assert.NoFileExists(t, filepath.Join(pageDir, "page.mdoc"))

	// TOML front matter survives the round trip untranslated.
	out, err := ParsePage("page.translated.md", []byte(readFile(t, filepath.Join(pageDir, "page.translated.md"))))
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, out.FrontMatterFormat)
	assert.Equal(t, "Page", out.FrontMatter["title"])
	assert.Equal(t, "Ethay endway.\n", out.ContentRaw)
}

func TestBuilder_CleanRemovesStaleOutput(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outDir := filepath.Join(root, "out")
	writeContent(t, contentDir, "a.md", "Alpha.\n")
	writeContent(t, outDir, "stale/file.txt", "old")

	_, err := NewBuilder(Options{ContentDir: contentDir, OutDir: outDir, Clean: true},
		WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(outDir, "stale", "file.txt"))
	assert.FileExists(t, filepath.Join(outDir, "a", "a.translated.md"))
}

func TestBuilder_SkipsOutDirInsideContent(t *testing.T) {
	contentDir := t.TempDir()
	outDir := filepath.Join(contentDir, "out")
	writeContent(t, contentDir, "a.md", "Alpha.\n")
	writeContent(t, outDir, "leftover.md", "Should not be read.\n")

	res, err := NewBuilder(Options{ContentDir: contentDir, OutDir: outDir},
		WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
}

func TestBuilder_CustomTranslator(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outDir := filepath.Join(root, "out")
	writeContent(t, contentDir, "a.md", "keep me\n")

	_, err := NewBuilder(Options{ContentDir: contentDir, OutDir: outDir},
		WithLogger(quietLogger()),
		WithTranslator(func(s string) string { return s }),
	).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "keep me\n", readFile(t, filepath.Join(outDir, "a", "a.translated.md")))
}

func TestBuilder_ContextCanceled(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	writeContent(t, contentDir, "a.md", "Alpha.\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(Options{ContentDir: contentDir, OutDir: filepath.Join(root, "out")},
		WithLogger(quietLogger())).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_MissingContentDir(t *testing.T) {
	root := t.TempDir()

	_, err := NewBuilder(Options{
		ContentDir: filepath.Join(root, "missing"),
		OutDir:     filepath.Join(root, "out"),
	}, WithLogger(quietLogger())).Run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuilder_RefusesOutDirAroundContent(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "site")
	contentDir := filepath.Join(outDir, "content")
	writeContent(t, contentDir, "a.md", "Alpha.\n")

	_, err := NewBuilder(Options{ContentDir: contentDir, OutDir: outDir, Clean: true},
		WithLogger(quietLogger())).Run(context.Background())
	assert.ErrorIs(t, err, ErrUnsafeOutDir)
	assert.FileExists(t, filepath.Join(contentDir, "a.md"))
}

func TestCheckDirs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		out     string
		unsafe  bool
	}{
		{"siblings", "content", "out", false},
		{"same dir", "content", "./content", true},
		{"out wraps content", "site/content", "site", true},
		{"out is cwd", "content", ".", true},
		{"out inside content", "content", "content/out", false},
		{"shared prefix only", "site-content", "site", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckDirs(tc.content, tc.out)
			if tc.unsafe {
				assert.ErrorIs(t, err, ErrUnsafeOutDir)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsSource(t *testing.T) {
	assert.True(t, isSource("content/a.md"))
	assert.True(t, isSource("content/A.MD"))
	assert.False(t, isSource("content/a.translated.md"))
	assert.False(t, isSource("content/a.mdoc"))
	assert.False(t, isSource("content/a.txt"))
}
