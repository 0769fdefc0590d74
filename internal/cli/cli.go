// Package cli wires the hugopiglatin commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"hugopiglatin/internal/config"
	"hugopiglatin/internal/site"
	"hugopiglatin/piglatin"
)

type rootOptions struct {
	logLevel string
}

// NewRootCommand builds the command tree. Output goes to the writers set on
// the returned command (stdout by default).
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hugopiglatin",
		Short:         "Translate text and Hugo content to Pig Latin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newTranslateCommand())
	cmd.AddCommand(newSiteCommand(opts))
	return cmd
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newTranslateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate the arguments, or stdin when none are given",
		Example: `  hugopiglatin translate "Hello, world!"
  echo "The quick brown fox" | hugopiglatin translate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				_, err := fmt.Fprintln(out, piglatin.Translate(strings.Join(args, " ")))
				return err
			}
			return translateStream(cmd.InOrStdin(), out)
		},
	}
}

// translateStream translates r line by line. Newlines are whitespace to the
// translator, so this matches translating the whole input at once.
func translateStream(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if _, werr := bw.WriteString(piglatin.Translate(line)); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
	return bw.Flush()
}

func newSiteCommand(root *rootOptions) *cobra.Command {
	var (
		contentDir string
		outDir     string
		noClean    bool
		writeJSON  bool
		tokens     bool
		mdoc       bool
	)

	cmd := &cobra.Command{
		Use:   "site",
		Short: "Translate a Hugo content tree into a mirrored output tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("content") {
				cfg.ContentDir = contentDir
			}
			if flags.Changed("out") {
				cfg.OutDir = outDir
			}
			if flags.Changed("no-clean") {
				cfg.Clean = !noClean
			}
			if flags.Changed("json") {
				cfg.WriteJSON = writeJSON
			}
			if flags.Changed("tokens") {
				cfg.WriteTokens = tokens
			}
			if flags.Changed("markdoc") {
				cfg.WriteMarkdoc = mdoc
			}
			if root.logLevel != "" {
				cfg.LogLevel = root.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, _ := config.ParseLevel(cfg.LogLevel)
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			b := site.NewBuilder(site.Options{
				ContentDir:      cfg.ContentDir,
				OutDir:          cfg.OutDir,
				Clean:           cfg.Clean,
				WriteJSON:       cfg.WriteJSON,
				WriteTokens:     cfg.WriteTokens,
				WriteMarkdoc:    cfg.WriteMarkdoc,
				FrontMatterKeys: cfg.FrontMatterKeys,
			}, site.WithLogger(logger))

			res, err := b.Run(cmd.Context())
			if err != nil {
				logger.Error("site build failed", "error", err)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Done. Processed %d Markdown file(s).\n", res.Processed)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&contentDir, "content", "", "content directory to read (default from PIGLATIN_CONTENT_DIR or \"content\")")
	f.StringVar(&outDir, "out", "", "output directory (default from PIGLATIN_OUT_DIR or \"out\")")
	f.BoolVar(&noClean, "no-clean", false, "keep existing files in the output directory")
	f.BoolVar(&writeJSON, "json", true, "write the parsed page document as JSON")
	f.BoolVar(&tokens, "tokens", true, "write a token dump for each page")
	f.BoolVar(&mdoc, "markdoc", true, "write a Markdoc version of each translated page")
	return cmd
}
