package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/assettrack"
	"github.com/etnz/assettrack/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	cfg  *Config
	year int
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized capital gains of a tax year" }
func (*gainsCmd) Usage() string {
	return `atrack gains [-year <year>] <file or dir>...

  Displays the realized gains of every lot slice sold during the year.
  Defaults to the last year with sales.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Tax year to report on. Defaults to the last year with sales.")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, err := c.cfg.inventory(f.Args(), nil)
	if err != nil {
		return fail(err)
	}
	year := c.year
	if year == 0 {
		years := assettrack.SaleYears(inv.Sales())
		if len(years) == 0 {
			c.cfg.printMarkdown("# Realized Gains\n\nNo sales.\n")
			return subcommands.ExitSuccess
		}
		year = years[len(years)-1]
	}
	md, err := renderer.GainsMarkdown(inv.Sales(), year)
	if err != nil {
		return fail(err)
	}
	c.cfg.printMarkdown(md)
	return subcommands.ExitSuccess
}

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	cfg *Config
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "current measure and basis per asset" }
func (*holdingsCmd) Usage() string {
	return `atrack holdings <file or dir>...

  Displays what is held once every export is applied, summed per asset and
  item type.
`
}

func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, err := c.cfg.inventory(f.Args(), nil)
	if err != nil {
		return fail(err)
	}
	holdings, err := assettrack.Holdings(inv.Lots())
	if err != nil {
		return fail(err)
	}
	c.cfg.printMarkdown(renderer.HoldingsMarkdown(holdings))
	return subcommands.ExitSuccess
}

// lotCmd holds the flags for the 'lot' subcommand.
type lotCmd struct {
	cfg *Config
	id  string
}

func (*lotCmd) Name() string     { return "lot" }
func (*lotCmd) Synopsis() string { return "state and history of one lot" }
func (*lotCmd) Usage() string {
	return `atrack lot -id <lot id> <file or dir>...

  Displays one lot, open or closed, with every event that changed it.
`
}

func (c *lotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Lot ID, the ID of the transaction that opened it.")
}

func (c *lotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(stderr, "-id is required")
		return subcommands.ExitUsageError
	}
	inv, err := c.cfg.inventory(f.Args(), nil)
	if err != nil {
		return fail(err)
	}
	lot, ok := inv.Lot(c.id)
	if !ok {
		return fail(fmt.Errorf("no lot %q", c.id))
	}
	c.cfg.printMarkdown(renderer.LotMarkdown(lot))
	return subcommands.ExitSuccess
}

// unmatchedCmd holds the flags for the 'unmatched' subcommand.
type unmatchedCmd struct {
	cfg *Config
}

func (*unmatchedCmd) Name() string     { return "unmatched" }
func (*unmatchedCmd) Synopsis() string { return "transfers without counterparty" }
func (*unmatchedCmd) Usage() string {
	return `atrack unmatched <file or dir>...

  Lists the transfers for which no counterparty was found. They did not
  change any lot.
`
}

func (*unmatchedCmd) SetFlags(*flag.FlagSet) {}

func (c *unmatchedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, err := c.cfg.inventory(f.Args(), nil)
	if err != nil {
		return fail(err)
	}
	c.cfg.printMarkdown(renderer.UnmatchedMarkdown(inv.Unmatched()))
	return subcommands.ExitSuccess
}

// logCmd holds the flags for the 'log' subcommand.
type logCmd struct {
	cfg *Config
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "step by step processing log" }
func (*logCmd) Usage() string {
	return `atrack log <file or dir>...

  Displays one line per processing step: matched transfers, like-kind
  exchanges, lots opened, sold, moved and charged.
`
}

func (*logCmd) SetFlags(*flag.FlagSet) {}

// lines collects the processing log.
type lines []string

func (l *lines) WriteLine(line string) { *l = append(*l, line) }

func (c *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var log lines
	if _, err := c.cfg.inventory(f.Args(), &log); err != nil {
		return fail(err)
	}
	c.cfg.printMarkdown(renderer.LogMarkdown(log))
	return subcommands.ExitSuccess
}
