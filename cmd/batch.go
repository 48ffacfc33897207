package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"odiapdf/internal/extract"
	"odiapdf/internal/logger"
	"odiapdf/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch [input-dir]",
	Short: "Extract text from every PDF in a directory",
	Long: `Process all PDF files found under a directory and write one text file per
document into the output directory, named after the source file.

Files are processed by a bounded pool of workers. A file that cannot be
opened (missing, corrupted, encrypted) is recorded in the summary and the
rest of the batch continues; per-page failures inside a file are likewise
contained to that page.

Optional environment variables:
  BATCH_WORKERS - Number of parallel workers (default: 4)`,
	Example: `  # Extract every PDF under ./books into ./books_text
  odiapdf batch ./books --out ./books_text

  # Two workers, pages 1-100 of each document
  odiapdf batch ./books --out ./books_text --workers 2 --range 1-100`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addExtractionFlags(batchCmd)
	batchCmd.Flags().String("out", "extracted_text", "Directory for the extracted text files")
	batchCmd.Flags().Int("workers", 0, "Number of parallel file workers (default from BATCH_WORKERS)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	inputDir := args[0]
	outDir, _ := cmd.Flags().GetString("out")

	info, err := os.Stat(inputDir)
	if err != nil {
		return fmt.Errorf("input directory not found: %s", inputDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", inputDir)
	}

	cfg, opts, pageRange, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		opts.Workers = workers
	}

	paths, err := extract.FindPDFs(inputDir)
	if err != nil {
		return fmt.Errorf("failed to scan for PDF files: %w", err)
	}
	if len(paths) == 0 {
		log.Warn().Str("dir", inputDir).Msg("No PDF files found")
		fmt.Println("No PDF files found in", inputDir)
		return nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	log.Info().
		Str("input", inputDir).
		Str("output", outDir).
		Int("files", len(paths)).
		Int("workers", opts.Workers).
		Str("engine", cfg.Engine).
		Str("languages", cfg.Languages).
		Msg("Starting batch processing")

	ctx, cancel := newSignalContext(log)
	defer cancel()

	ocrEngine, closeEngine, err := newOCREngine(ctx, cfg, opts, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	engine := extract.New(ocrEngine, opts)
	summary := engine.ExtractBatch(ctx, paths, pageRange)

	for _, file := range summary.Files {
		if file.Failed() {
			fmt.Printf("✗ %s: %v\n", filepath.Base(file.Path), explainFileError(file.Err, file.Path))
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
		outPath := filepath.Join(outDir, stem+".txt")
		if err := output.WriteDocument(outPath, file.Result); err != nil {
			log.Error().Err(err).Str("file", outPath).Msg("Failed to write output file")
			fmt.Printf("✗ %s: %v\n", filepath.Base(file.Path), err)
			continue
		}

		fmt.Printf("✓ %s → %s (%d pages, %d via OCR, %d failed)\n",
			filepath.Base(file.Path), outPath,
			len(file.Result.Pages), file.Result.OCRPages, file.Result.FailedPages)
	}

	fmt.Printf("\nProcessed %d files: %d succeeded, %d failed\n",
		len(summary.Files), summary.Succeeded, summary.Failed)

	if summary.Failed > 0 && summary.Succeeded == 0 {
		return fmt.Errorf("all %d files failed", summary.Failed)
	}
	return nil
}
