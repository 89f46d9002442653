// Command formlayout-mcp is an MCP (Model Context Protocol) server that lets
// AI assistants render and inspect fillable PDF forms.
//
// # Installation
//
//	go install github.com/lvillar/formlayout/cmd/formlayout-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "formlayout": {
//	      "command": "formlayout-mcp",
//	      "env": {"FORMLAYOUT_CONFIG": "/path/to/formlayout.yaml"}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - render_form: Render a variant of a template to PDF
//   - list_fields: List field names and rectangles
//   - list_variants: List the variants of a template
//   - validate_template: Check a description under both themes
//
// # Available Resources
//
//   - form://templates : Built-in templates
//   - form://fields?template=... : Field manifest of a built-in template
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lvillar/formlayout/internal/config"
	"github.com/lvillar/formlayout/mcp"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "formlayout-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("FORMLAYOUT_CONFIG"))
	if err != nil {
		return err
	}
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	assets, err := cfg.AssetSource(logger)
	if err != nil {
		return err
	}

	server := mcp.NewServer(mcp.WithLogger(logger), mcp.WithVersion(version))
	mcp.RegisterDefaultTools(server, mcp.Toolkit{
		Assets: assets,
		Writer: cfg.WriterOptions(logger),
		Logger: logger,
	})
	mcp.RegisterDefaultResources(server, assets)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("serving MCP on stdio", zap.String("version", version))
	return server.Run(ctx)
}
