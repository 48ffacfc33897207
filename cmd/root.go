package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"odiapdf/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "odiapdf",
	Short: "odiapdf - Extract text from Odia PDF documents with OCR fallback",
	Long: `odiapdf extracts machine-readable text from PDF documents that mix
native text with scanned pages, with OCR support for Odia, English, and
Hindi.

Each page is first read through the PDF's own text objects; pages without
enough native text are rendered to a bitmap, preprocessed, and passed through
OCR. Results are page-addressable and every page is accounted for, even when
individual pages or files are unreadable.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("odiapdf executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
