package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lvillar/formlayout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the variants of a template over HTTP",
	Long: `Serve starts an HTTP server with the routes

	GET /healthz
	GET /variants
	GET /fields[?format=xlsx][&theme=basic|styled]
	GET /forms/{variant}.pdf[?theme=basic|styled]

It stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	doc, err := loadDocument(cfg.Render.Template)
	if err != nil {
		return err
	}
	assets, err := assetSource()
	if err != nil {
		return err
	}
	s, err := server.New(server.Config{
		Addr:         addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, doc,
		server.WithAssets(assets),
		server.WithWriterOptions(cfg.WriterOptions(logger)...),
		server.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Start(ctx)
}
