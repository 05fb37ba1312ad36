package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var generateClientKey string

var generateCmd = &cobra.Command{
	Use:   "generate <input>",
	Short: "Generate a stylized quote from a short phrase",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateClientKey, "client", "cli",
		"client key used for rate limiting")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := rt.newGenerationService(nil)
	if err != nil {
		return err
	}

	result, err := svc.Generate(ctx, args[0], generateClientKey)
	if err != nil {
		return err
	}

	fmt.Printf("本人「%s」\n", result.Original)
	if result.Interpreted != "" {
		fmt.Printf("通訳「%s」\n", result.Interpreted)
	}
	fmt.Printf("公式「%s」\n", result.Official)
	fmt.Printf("(id=%d)\n", result.ID)
	return nil
}
