package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/etnz/assettrack"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	cfg        *Config
	outputFile string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "converts exports into canonical transactions"
}
func (*fmtCmd) Usage() string {
	return `atrack fmt [-out <file>] <file or dir>...

  Reads every export, validates the transactions and writes them sorted by
  date in the canonical JSON Lines form, one transaction per line. The result
  can be read back by any command as a .jsonl input.

Usage Examples:
# Merges all exports of a folder into one ledger.
$ atrack fmt -out ledger.jsonl exports/
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputFile, "out", "", "File to write to. Writes to the standard output by default.")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	txs, err := c.cfg.importAll(f.Args())
	if err != nil {
		return fail(err)
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fail(err)
		}
	}

	write := func(w io.Writer) error { return assettrack.EncodeTransactions(w, txs) }
	if c.outputFile == "" {
		if err := write(stdout); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}
	if err := writeFile(c.outputFile, write); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stderr, "Wrote %d transactions to %s\n", len(txs), c.outputFile)
	return subcommands.ExitSuccess
}
