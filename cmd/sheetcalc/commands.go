package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/storage"
)

func newEvalCmd(a *app) *cobra.Command {
	var vars []string
	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate a single formula",
		Long: `Evaluate a formula with variables bound by --var.

Examples:
  sheetcalc eval "(1+2)*3"
  sheetcalc eval "=A1/B1" --var A1=10 --var B1=4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEval(cmd.OutOrStdout(), args[0], vars)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Bind a variable, as name=number")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set FILE NAME CONTENTS",
		Short: "Set the contents of a cell and save",
		Long: `Set the contents of one cell, creating FILE if it does not exist, and
print the new value of every cell that was recalculated.

Contents starting with "=" are formulas, numbers are numbers, an empty
string clears the cell and anything else is text.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSet(cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE NAME",
		Short: "Print the contents and value of a cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list FILE",
		Short: "Print every non-empty cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.OutOrStdout(), args[0])
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Copy a spreadsheet into another storage format",
		Long: `Read IN and write the same document to OUT. Both formats are picked
from the file extensions, for example:
  sheetcalc convert budget.xml budget.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version FILE",
		Short: "Print the version string saved in a spreadsheet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVersion(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runEval(out io.Writer, expr string, vars []string) error {
	ctx, err := a.spreadsheetContext()
	if err != nil {
		return err
	}
	normalize := ctx.Normalize

	bindings := make(map[string]float64, len(vars))
	for _, v := range vars {
		name, text, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --var %q, expected name=number", v)
		}
		number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("invalid --var %q: %w", v, err)
		}
		bindings[normalize(name)] = number
	}

	formula, err := spreadsheet.NewFormulaWithContext(strings.TrimPrefix(expr, "="),
		&spreadsheet.FormulaContext{Normalize: ctx.Normalize, Validate: ctx.Validate})
	if err != nil {
		return err
	}
	value := formula.Evaluate(func(name string) (float64, error) {
		number, ok := bindings[name]
		if !ok {
			return 0, fmt.Errorf("unbound variable %s", name)
		}
		return number, nil
	})
	fmt.Fprintln(out, formatValue(value))
	return nil
}

func (a *app) runSet(out io.Writer, path, name, contents string) error {
	path = a.resolvePath(path)
	s, err := a.openOrCreate(path)
	if err != nil {
		return err
	}
	recomputed, err := s.SetContentsOfCell(name, contents)
	if err != nil {
		return err
	}
	if err := storage.SaveSheet(path, a.cfg.Storage.Sheet, s); err != nil {
		return err
	}
	a.logger.Info("cell saved", slog.String("path", path), slog.String("cell", recomputed[0]),
		slog.Int("recalculated", len(recomputed)))

	for _, cell := range recomputed {
		value, err := s.GetCellValue(cell)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", cell, formatValue(value))
	}
	return nil
}

func (a *app) runGet(out io.Writer, path, name string) error {
	s, err := a.open(a.resolvePath(path))
	if err != nil {
		return err
	}
	text, err := s.GetCellText(name)
	if err != nil {
		return err
	}
	value, err := s.GetCellValue(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "contents: %s\nvalue: %s\n", text, formatValue(value))
	return nil
}

func (a *app) runList(out io.Writer, path string) error {
	s, err := a.open(a.resolvePath(path))
	if err != nil {
		return err
	}
	for _, name := range s.GetNamesOfAllNonemptyCells() {
		text, err := s.GetCellText(name)
		if err != nil {
			return err
		}
		value, err := s.GetCellValue(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", name, text, formatValue(value))
	}
	return nil
}

func (a *app) runConvert(out io.Writer, in, dst string) error {
	in, dst = a.resolvePath(in), a.resolvePath(dst)
	doc, err := storage.ReadDocument(in, a.cfg.Storage.Sheet)
	if err != nil {
		return err
	}
	if err := storage.WriteDocument(dst, a.cfg.Storage.Sheet, doc); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d cells to %s\n", len(doc.Cells), dst)
	return nil
}

func (a *app) runVersion(out io.Writer, path string) error {
	path = a.resolvePath(path)
	format, err := storage.FormatForPath(path)
	if err != nil {
		return err
	}
	if format == storage.FormatBolt {
		doc, err := storage.ReadDocument(path, a.cfg.Storage.Sheet)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doc.Version)
		return nil
	}

	serializer, err := storage.Serializer(format)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return spreadsheet.NewReadWriteError("open "+path, err)
	}
	defer f.Close()
	version, err := spreadsheet.SavedVersion(f, serializer)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, version)
	return nil
}

func (a *app) open(path string) (*spreadsheet.Spreadsheet, error) {
	ctx, err := a.spreadsheetContext()
	if err != nil {
		return nil, err
	}
	return storage.OpenSheet(path, a.cfg.Storage.Sheet, ctx)
}

// openOrCreate returns an empty spreadsheet when path or its sheet does not
// exist yet
func (a *app) openOrCreate(path string) (*spreadsheet.Spreadsheet, error) {
	s, err := a.open(path)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrNoSheet) {
		ctx, err := a.spreadsheetContext()
		if err != nil {
			return nil, err
		}
		a.logger.Debug("creating spreadsheet", slog.String("path", path))
		return spreadsheet.NewSpreadsheetWithContext(ctx), nil
	}
	return s, err
}

// resolvePath appends the configured storage format to paths without an
// extension
func (a *app) resolvePath(path string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + "." + a.cfg.Storage.Format
}

func formatValue(value spreadsheet.Primitive) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case spreadsheet.FormulaError:
		return "#ERROR " + v.Reason
	}
	return fmt.Sprint(value)
}
