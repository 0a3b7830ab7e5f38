package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexframe/lexframe/orchestrator"
)

// IngestCmd uploads a contract document — the CLI's stand-in for the
// transport-agnostic UploadRequest spec.md §6 names — and prints the
// created contract's ID so a follow-up chat command can reference it.
type IngestCmd struct {
	File         string `arg:"" help:"Path to the contract document (PDF/DOCX)." type:"existingfile"`
	Title        string `required:"" help:"Contract title."`
	ContractType string `help:"Contract type (e.g. vendor_agreement)."`
}

func (c *IngestCmd) Run(cli *CLI) error {
	ctn, err := buildContainer(cli.Config)
	if err != nil {
		return err
	}
	defer ctn.Close()

	content, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	req := orchestrator.UploadRequest{
		Title:    c.Title,
		FileName: filepath.Base(c.File),
		Content:  content,
	}
	if c.ContractType != "" {
		req.ContractType = &c.ContractType
	}

	contract, err := ctn.orch.IngestContract(context.Background(), ctn.blobs, req)
	if err != nil {
		return fmt.Errorf("ingest contract: %w", err)
	}

	fmt.Printf("contract ingested: %s\n", contract.ID)
	return nil
}
