// Package cmd implements the atrack command line: it imports custodian
// exports, runs the lot inventory and prints or writes the reports.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/assettrack"
	"github.com/etnz/assettrack/importer"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander, cfg *Config) {
	c.Register(&runCmd{cfg: cfg}, "inventory")
	c.Register(&fmtCmd{cfg: cfg}, "inventory")
	c.Register(&logCmd{cfg: cfg}, "inventory")

	c.Register(&gainsCmd{cfg: cfg}, "reports")
	c.Register(&holdingsCmd{cfg: cfg}, "reports")
	c.Register(&lotCmd{cfg: cfg}, "reports")
	c.Register(&unmatchedCmd{cfg: cfg}, "reports")

	c.Register(&topicCmd{cfg: cfg}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var inputExtensions = []string{".csv", ".txt", ".json", ".jsonl"}

// inputFiles expands directories into the export files they contain.
// Flat exports written by a previous run are skipped.
func inputFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, "tm-") || !slices.Contains(inputExtensions, strings.ToLower(filepath.Ext(name))) {
				continue
			}
			files = append(files, filepath.Join(arg, name))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	return files, nil
}

// importAll reads every input into one transaction list.
func (c *Config) importAll(args []string) ([]assettrack.Transaction, error) {
	files, err := inputFiles(args)
	if err != nil {
		return nil, err
	}
	var mapping *importer.Mapping
	if c.Mapping != "" {
		if mapping, err = importer.LoadMapping(c.Mapping); err != nil {
			return nil, err
		}
	}
	var all []assettrack.Transaction
	for _, f := range files {
		txs, err := importer.ImportFile(f, mapping)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	return all, nil
}

// logger returns the structured logger of this run.
func (c *Config) logger() (*slog.Logger, error) {
	return c.NewLogger(stderr)
}

// inventory imports args and applies them. Processing lines go to w, or to
// the structured log when w is nil.
func (c *Config) inventory(args []string, w assettrack.LogWriter) (*assettrack.Inventory, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = assettrack.NewSlogWriter(logger)
	}
	txs, err := c.importAll(args)
	if err != nil {
		return nil, err
	}
	logger.Debug("imported transactions", "count", len(txs))

	inv := assettrack.NewInventory(append(opts, assettrack.WithLogWriter(w))...)
	if err := inv.Apply(txs); err != nil {
		return nil, err
	}
	logger.Info("inventory complete", "lots", len(inv.Lots()), "sales", len(inv.Sales()), "unmatched", len(inv.Unmatched()))
	return inv, nil
}

// printMarkdown renders md for the terminal, or prints it raw when styling
// is off or fails.
func (c *Config) printMarkdown(md string) {
	if !c.Plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(stdout, out)
				return
			}
		}
	}
	fmt.Fprint(stdout, md)
}

// fail prints err and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
