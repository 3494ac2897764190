package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "makeup-recommender",
	Short: "Skin tone based makeup recommendations",
	Long: `Makeup Recommender classifies the skin tone in an uploaded selfie as fair,
medium or dark and suggests products from a curated catalog for that tone,
optionally filtered by brand and product type.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()
}
