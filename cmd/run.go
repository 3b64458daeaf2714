package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/assettrack"
	"github.com/google/subcommands"
)

type runCmd struct {
	cfg *Config
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "process the exports and write every flat export" }
func (*runCmd) Usage() string {
	return `atrack [-o <dir>] run <file or dir>...

  Imports the custodian exports, applies them to the lot inventory and writes
  the tab separated exports into the output directory:

    tm-transactions.txt       every applied transaction
    tm-lots.txt               open lots
    tm-holdings.txt           holdings per asset and item type
    tm-gains-<year>.txt       realized gains, one file per year with sales
    tm-no-match-transfers.txt transfers without counterparty
`
}

func (*runCmd) SetFlags(*flag.FlagSet) {}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(stderr, "run requires at least one input file or directory")
		return subcommands.ExitUsageError
	}
	inv, err := c.cfg.inventory(f.Args(), nil)
	if err != nil {
		return fail(err)
	}
	if err := writeExports(c.cfg.OutputDir, inv); err != nil {
		return fail(err)
	}

	years := assettrack.SaleYears(inv.Sales())
	c.cfg.printMarkdown(fmt.Sprintf("# Run Summary\n\n"+
		"| Item | Count |\n|:---|---:|\n"+
		"| Transactions | %d |\n| Lots | %d |\n| Open lots | %d |\n| Sales | %d |\n| Tax years | %d |\n| Unmatched transfers | %d |\n\n"+
		"Exports written to `%s`.\n",
		len(inv.Transactions()), len(inv.Lots()), len(inv.OpenLots()), len(inv.Sales()), len(years), len(inv.Unmatched()),
		c.cfg.OutputDir))
	return subcommands.ExitSuccess
}

// writeExports writes all flat exports of inv into dir.
func writeExports(dir string, inv *assettrack.Inventory) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	holdings, err := assettrack.Holdings(inv.Lots())
	if err != nil {
		return err
	}
	files := map[string]func(io.Writer) error{
		assettrack.TransactionsFileName: func(w io.Writer) error { return assettrack.WriteTransactions(w, inv.Transactions()) },
		assettrack.LotsFileName:         func(w io.Writer) error { return assettrack.WriteOpenLots(w, inv.Lots()) },
		assettrack.HoldingsFileName:     func(w io.Writer) error { return assettrack.WriteHoldings(w, holdings) },
		assettrack.UnmatchedFileName:    func(w io.Writer) error { return assettrack.WriteTransactions(w, inv.Unmatched()) },
	}
	for _, year := range assettrack.SaleYears(inv.Sales()) {
		files[assettrack.GainsFileName(year)] = func(w io.Writer) error { return assettrack.WriteGains(w, inv.Sales(), year) }
	}
	for name, write := range files {
		if err := writeFile(filepath.Join(dir, name), write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
