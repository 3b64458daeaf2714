// Command atrack computes tax lots and realized capital gains from custodian
// exports of precious metals and crypto currencies.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assettrack/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.SetFlags(flag.CommandLine)

	commander := subcommands.NewCommander(flag.CommandLine, "atrack")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander, &cfg)

	complete.Complete("atrack", completion())

	flag.Parse()

	if flag.NArg() > 0 && !registered(commander, flag.Arg(0)) {
		if ok, code := cfg.RunExtension(flag.Arg(0), flag.Args()[1:]); ok {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	inputs := predict.Files("*")
	global := map[string]complete.Predictor{
		"o":          predict.Dirs("*"),
		"match":      predict.Set{"none", "across", "similar"},
		"dedup":      predict.Something,
		"log-level":  predict.Set{"debug", "info", "warn", "error"},
		"log-format": predict.Set{"text", "json"},
		"mapping":    predict.Files("*.json"),
		"plain":      predict.Nothing,
	}
	return &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"run":       {Args: inputs},
			"fmt":       {Flags: map[string]complete.Predictor{"out": predict.Files("*.jsonl")}, Args: inputs},
			"log":       {Args: inputs},
			"gains":     {Flags: map[string]complete.Predictor{"year": predict.Something}, Args: inputs},
			"holdings":  {Args: inputs},
			"lot":       {Flags: map[string]complete.Predictor{"id": predict.Something}, Args: inputs},
			"unmatched": {Args: inputs},
			"topic":     {Args: predict.Set{"inputs", "canonical", "transfers", "exchanges", "exports", "configuration"}},
		},
	}
}
