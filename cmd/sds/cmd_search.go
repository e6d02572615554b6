package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sdscatalog/config"
	"github.com/shashiranjanraj/sdscatalog/internal/server"
)

// sds search:sync
var searchSyncCmd = &cobra.Command{
	Use:   "search:sync",
	Short: "Push every stored sheet to the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := config.Load(); err != nil {
			return err
		}
		if config.SearchURL() == "" {
			return fmt.Errorf("search:sync: SEARCH_URL is not set")
		}

		a, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Catalog.SyncIndex(ctx)
		if err != nil {
			return fmt.Errorf("search:sync: %d sheets pushed before failure: %w", n, err)
		}
		fmt.Printf("✅ Pushed %d sheets to index %q\n", n, config.SearchIndex())
		return nil
	},
}
