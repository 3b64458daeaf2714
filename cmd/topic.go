package cmd

import (
	"context"
	"flag"

	"github.com/etnz/assettrack/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	cfg *Config
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the user manual" }
func (*topicCmd) Usage() string {
	return `atrack topic [<topic>...]

  Without argument, lists the topics. '*' prints them all.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var md string
	var err error
	if f.NArg() == 0 {
		md, err = docs.Index()
	} else {
		md, err = docs.GetTopics(f.Args()...)
	}
	if err != nil {
		return fail(err)
	}
	c.cfg.printMarkdown(md)
	return subcommands.ExitSuccess
}
