package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goroku-app/goroku/internal/domain"
	"github.com/goroku-app/goroku/internal/prompt"
)

const tweetIntentBase = "https://twitter.com/intent/tweet"

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Inspect and curate the quote collection",
}

var quotesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all quotes with engagement scores",
	RunE:  runQuotesList,
}

var (
	quotesAddInterpreted string
	quotesAddSlotLabel   string
)

var quotesAddCmd = &cobra.Command{
	Use:   "add <original> <official>",
	Short: "Add a curated quote without calling the model",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuotesAdd,
}

var likeDelta int64

var quotesLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Adjust a quote's like counter",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuotesLike,
}

var quotesShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Print an X post intent URL for a quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuotesShare,
}

func init() {
	quotesAddCmd.Flags().StringVar(&quotesAddInterpreted, "interpreted", "",
		"optional interpreted line")
	quotesAddCmd.Flags().StringVar(&quotesAddSlotLabel, "slot", "",
		"slot label for the lineup (one of 右左中三一二遊捕DH)")
	quotesLikeCmd.Flags().Int64Var(&likeDelta, "delta", 1, "like adjustment")

	quotesCmd.AddCommand(quotesListCmd, quotesAddCmd, quotesLikeCmd, quotesShareCmd)
	rootCmd.AddCommand(quotesCmd)
}

func runQuotesList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	quotes, err := rt.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, q := range quotes {
		label := q.SlotLabel
		if label == "" {
			label = "-"
		}
		fmt.Printf("%4d [%s] score=%-6d %s\n", q.ID, label, q.Score(), q.Official)
	}
	return nil
}

func runQuotesAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if quotesAddSlotLabel != "" {
		if _, ok := domain.CanonicalSlotLabel(quotesAddSlotLabel); !ok {
			return fmt.Errorf("unknown slot label %q", quotesAddSlotLabel)
		}
	}

	id, err := rt.store.Append(ctx, domain.Quote{
		Original:    args[0],
		Official:    args[1],
		Interpreted: quotesAddInterpreted,
		SlotLabel:   quotesAddSlotLabel,
	})
	if err != nil {
		return err
	}

	fmt.Printf("added quote %d\n", id)
	return nil
}

func runQuotesLike(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quote id %q", args[0])
	}

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := rt.store.AdjustLikes(ctx, id, likeDelta)
	if err != nil {
		return err
	}

	fmt.Printf("quote %d likes: %d\n", id, count)
	return nil
}

func runQuotesShare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quote id %q", args[0])
	}

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	quotes, err := rt.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, q := range quotes {
		if q.ID != id {
			continue
		}
		fmt.Println(tweetIntentURL(q))
		return nil
	}
	return fmt.Errorf("quote %d not found", id)
}

// tweetIntentURL builds the X post intent link for a quote, rendering the
// full three-line block as the post text.
func tweetIntentURL(q domain.Quote) string {
	v := url.Values{}
	v.Set("text", prompt.FormatExample(q))
	return tweetIntentBase + "?" + v.Encode()
}
