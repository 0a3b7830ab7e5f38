package main

import (
	"context"
	"fmt"

	"github.com/lexframe/lexframe/orchestrator"
)

// ChatCmd sends one message through the orchestrator and prints the
// resulting response, mirroring the external request/response shape
// spec.md §6 names (session_id, contract_id, message in; message,
// citations, degraded out).
type ChatCmd struct {
	Message    string `required:"" help:"User message to send."`
	Session    string `help:"Existing session ID. Omitted starts a new session."`
	Contract   string `help:"Contract ID to set as the session's active contract."`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctn, err := buildContainer(cli.Config)
	if err != nil {
		return err
	}
	defer ctn.Close()

	req := orchestrator.ChatRequest{Query: c.Message}
	if c.Session != "" {
		req.SessionID = &c.Session
	}
	if c.Contract != "" {
		req.ContractID = &c.Contract
	}

	resp, err := ctn.orch.HandleTurn(context.Background(), req)
	if err != nil {
		return fmt.Errorf("chat turn failed: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("chat turn failed: %s", resp.Error)
	}

	fmt.Println(resp.Message)
	fmt.Printf("\nagent: %s\n", resp.Agent)
	if len(resp.Citations) > 0 {
		fmt.Println("\nCitations:")
		for _, cit := range resp.Citations {
			fmt.Printf("  - %s (%s)\n", cit.Title, cit.URI)
		}
	}
	if len(resp.ToolsUsed) > 0 {
		fmt.Printf("\ntools used: %v\n", resp.ToolsUsed)
	}
	if resp.Degraded {
		fmt.Println("\n[response is degraded: one or more agents hit a timeout or bound]")
	}
	fmt.Printf("\nsession: %s\n", resp.SessionID)
	return nil
}
