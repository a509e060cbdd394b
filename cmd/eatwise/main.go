package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "eatwise",
	Short:        "EatWise calorie tracker backend",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newProvisionCmd(), newReportCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
