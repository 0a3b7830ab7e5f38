package main

import (
	"context"
	"fmt"
)

// LogsCmd prints a session's accumulated ThinkingLog entries, optionally
// filtered to a single turn — the operator-facing view onto the audit
// trail spec.md §4.9 describes.
type LogsCmd struct {
	Session string `required:"" help:"Session ID to show logs for."`
	Turn    string `help:"Restrict to a single turn ID."`
}

func (c *LogsCmd) Run(cli *CLI) error {
	ctn, err := buildContainer(cli.Config)
	if err != nil {
		return err
	}
	defer ctn.Close()

	var turn *string
	if c.Turn != "" {
		turn = &c.Turn
	}

	entries, err := ctn.store.ListThinkingLogs(context.Background(), c.Session, turn)
	if err != nil {
		return fmt.Errorf("list thinking logs: %w", err)
	}

	for _, e := range entries {
		fmt.Printf("[%s] turn=%s seq=%d agent=%s stage=%s payload=%v\n",
			e.CreatedAt.Format("15:04:05.000"), e.TurnID, e.Sequence, e.AgentName, e.Stage, e.Payload)
	}
	return nil
}
