package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pos-payments",
	Short: "POS payment processing service",
	Long:  "Provider-agnostic payment processing for the POS platform: provider registry, cash provider, and the legacy bridge.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
