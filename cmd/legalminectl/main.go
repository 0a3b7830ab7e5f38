// Command legalminectl is the CLI front end for the legal-document
// analysis platform: a direct, non-interactive entry point over the
// same Orchestrator a transport layer would call, grounded on the
// teacher's cmd/hector/main.go kong wiring (CLI struct of subcommands,
// each with a Run(cli *CLI) error method) generalized from the
// teacher's serve/info/validate/schema commands to this platform's
// chat/logs/ingest surface.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the top-level command set.
type CLI struct {
	Chat   ChatCmd   `cmd:"" help:"Send one message and print the agent's response."`
	Logs   LogsCmd   `cmd:"" help:"Show a session's thinking log."`
	Ingest IngestCmd `cmd:"" help:"Upload a contract document."`

	Config string `short:"c" help:"Path to config file." type:"path"`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("legalminectl"),
		kong.Description("Legal document analysis platform CLI"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
