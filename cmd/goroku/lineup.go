package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goroku-app/goroku/internal/app"
	"github.com/goroku-app/goroku/internal/domain"
	"github.com/goroku-app/goroku/internal/lineup"
	"github.com/goroku-app/goroku/internal/prompt"
)

var lineupDate string

// timeNow is a seam for tests.
var timeNow = time.Now

var lineupCmd = &cobra.Command{
	Use:   "lineup",
	Short: "Show the deterministic daily lineup",
	RunE:  runLineup,
}

func init() {
	lineupCmd.Flags().StringVar(&lineupDate, "date", "",
		"date key (YYYY-MM-DD), defaults to today in Tokyo")
	rootCmd.AddCommand(lineupCmd)
}

func runLineup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := app.NewLineupService(app.LineupDeps{
		Store:  rt.store,
		Logger: rt.logger,
	})

	dateKey := lineupDate
	if dateKey == "" {
		dateKey = lineup.DateKey(timeNow())
	}

	ids, err := svc.ForDate(ctx, dateKey)
	if err != nil {
		return err
	}

	quotes, err := rt.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]domain.Quote, len(quotes))
	for _, q := range quotes {
		byID[q.ID] = q
	}

	fmt.Printf("%s のスタメン語録\n", dateKey)
	for i, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		official := q.Official
		if official == "" {
			official = prompt.OmittedPlaceholder
		}
		fmt.Printf("%d. %s (id=%d)\n", i+1, official, id)
	}
	return nil
}
