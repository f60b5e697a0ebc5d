// Package main provides gridctl, a command line front end for loading,
// printing and converting grids.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/core"
	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/logging"
	"github.com/JonMunkholm/gridtable/internal/resource"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
	"github.com/JonMunkholm/gridtable/internal/xlsx"
	"github.com/spf13/cobra"
)

// inputOptions are shared by every command that reads a grid.
type inputOptions struct {
	schema     string
	schemaFile string
	header     bool
	inSep      string
	sheet      string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var in inputOptions

	rootCmd := &cobra.Command{
		Use:   "gridctl",
		Short: "Load, print and convert delimited text and workbook grids",
		Long: `gridctl loads a grid from delimited text (a path, file:// or http(s) URL,
or - for stdin) or from an .xlsx workbook, converting each column with the
parser named in --schema, and prints or converts it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), in.logLevel, "text"))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&in.schema, "schema", "", "Column parsers, e.g. string,integer,double, or a name from --schema-file")
	flags.StringVar(&in.schemaFile, "schema-file", "", "Properties file of named schemas (name=parsers)")
	flags.BoolVar(&in.header, "header", false, "Keep the first line as text")
	flags.StringVar(&in.inSep, "in-sep", tabletext.DefaultSeparator, "Field separator of text input")
	flags.StringVar(&in.sheet, "sheet", "", "Workbook sheet (default: first sheet for input, Sheet1 for output)")
	flags.StringVar(&in.logLevel, "log-level", "warn", "Log level on stderr: debug, info, warn, error")

	rootCmd.AddCommand(
		newShowCmd(&in),
		newRenderCmd(&in),
		newConvertCmd(&in),
		newParsersCmd(),
	)
	return rootCmd
}

func newShowCmd(in *inputOptions) *cobra.Command {
	var width int
	var sep string

	cmd := &cobra.Command{
		Use:   "show INPUT",
		Short: "Print a grid as aligned columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return tabletext.RenderAligned(cmd.OutOrStdout(), g, tabletext.AlignedOptions{
				Separator:  sep,
				MaxWidth:   width,
				HeaderRule: in.header,
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Truncate cells wider than this (0: no limit)")
	cmd.Flags().StringVar(&sep, "sep", "", "Column separator (default \" | \")")
	return cmd
}

func newRenderCmd(in *inputOptions) *cobra.Command {
	var sep, outputPath string

	cmd := &cobra.Command{
		Use:   "render INPUT",
		Short: "Print a grid as delimited text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if outputPath != "" {
				return tabletext.RenderFile(outputPath, g, sep)
			}
			return tabletext.Render(cmd.OutOrStdout(), g, sep)
		},
	}
	cmd.Flags().StringVar(&sep, "sep", tabletext.DefaultSeparator, "Field separator of the output")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func newConvertCmd(in *inputOptions) *cobra.Command {
	var sep string

	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert between delimited text and .xlsx, chosen by OUTPUT's extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := args[1]
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if isWorkbook(out) {
				err = xlsx.Export(g, out, in.sheet)
			} else {
				err = tabletext.RenderFile(out, g, sep)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d rows, %d columns)\n", out, g.Height(), g.Width())
			return nil
		},
	}
	cmd.Flags().StringVar(&sep, "sep", tabletext.DefaultSeparator, "Field separator of text output")
	return cmd
}

func newParsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parsers",
		Short: "List the column parser names accepted by --schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range tabletext.ParserNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func isWorkbook(path string) bool {
	return strings.EqualFold(resource.Extension(path), ".xlsx")
}

// parsers resolves --schema, consulting --schema-file for named schemas.
func (in *inputOptions) parsers() ([]tabletext.Parser, error) {
	if strings.TrimSpace(in.schema) == "" {
		return nil, fmt.Errorf("%w: --schema is required", grid.ErrInvalidArgument)
	}

	registry := core.NewSchemaRegistry()
	if in.schemaFile != "" {
		f, err := os.Open(in.schemaFile)
		if err != nil {
			return nil, grid.NewIOError("open", in.schemaFile, err)
		}
		defer f.Close()

		props, err := resource.LoadProperties(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.schemaFile, err)
		}
		if err := registry.RegisterAll(props); err != nil {
			return nil, err
		}
	}
	return registry.Resolve(in.schema)
}

// load reads the grid named by input. Workbooks are read from local files;
// text may also come from stdin ("-") or any URL scheme resource.OpenURL
// knows.
func (in *inputOptions) load(ctx context.Context, input string, stdin io.Reader) (*grid.Grid, error) {
	parsers, err := in.parsers()
	if err != nil {
		return nil, err
	}

	logger := slog.With("input", input)

	if isWorkbook(input) {
		logger.Debug("reading workbook", "sheet", in.sheet)
		return xlsx.Import(input, xlsx.Options{
			Sheet:   in.sheet,
			Header:  in.header,
			Parsers: parsers,
		})
	}

	opts := tabletext.Options{
		Separator: in.inSep,
		Header:    in.header,
		Parsers:   parsers,
		Sanitize:  true,
		Progress: func(p tabletext.Progress) {
			logger.Debug("load progress", "rows", p.Rows, "bytes", p.BytesRead)
		},
	}
	if input == "-" {
		return tabletext.Load(stdin, opts)
	}

	rc, err := resource.OpenURL(ctx, input)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return tabletext.Load(rc, opts)
}
