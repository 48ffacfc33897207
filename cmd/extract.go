package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"odiapdf/internal/extract"
	"odiapdf/internal/logger"
	"odiapdf/internal/output"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract text from one PDF with OCR fallback for scanned pages",
	Long: `Extract text from a single PDF file.

Each page is first read through the PDF's native text objects. Pages whose
native text is missing or below the sufficiency threshold are rendered to a
bitmap, preprocessed (grayscale plus contrast enhancement), and recognized
with OCR using the configured languages. Every page of the requested range
appears in the output, including pages that failed.

The default OCR engine is Tesseract and requires the language packs for the
configured languages. The vision engine needs Google Cloud credentials:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Extract a whole book to stdout
  odiapdf extract "Anubhuta Jogamala 1 - Sahaja Chikitsa.pdf"

  # Save to a file, pages 1 to 50 only
  odiapdf extract book.pdf -o book.txt --range 1-50

  # One text file per page plus a concatenated file
  odiapdf extract book.pdf --pages-dir ./book_pages

  # English-only document without preprocessing
  odiapdf extract scan.pdf --languages eng --no-preprocess`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addExtractionFlags(extractCmd)
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().String("pages-dir", "", "Write one text file per page into this directory")
	extractCmd.Flags().String("prefix", "page", "File name prefix for per-page output files")
	extractCmd.Flags().Bool("json", false, "Output the full result (methods, confidences, errors) as JSON")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	pdfPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	pagesDir, _ := cmd.Flags().GetString("pages-dir")
	prefix, _ := cmd.Flags().GetString("prefix")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, opts, pageRange, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", pdfPath).
		Str("engine", cfg.Engine).
		Str("languages", cfg.Languages).
		Int("dpi", cfg.RenderDPI).
		Bool("preprocess", cfg.Preprocess).
		Msg("Starting extraction")

	ctx, cancel := newSignalContext(log)
	defer cancel()

	ocrEngine, closeEngine, err := newOCREngine(ctx, cfg, opts, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	engine := extract.New(ocrEngine, opts)
	result, err := engine.ExtractDocument(ctx, pdfPath, pageRange)
	if err != nil {
		log.Error().Err(err).Str("file", pdfPath).Msg("Extraction failed")
		return explainFileError(err, pdfPath)
	}

	log.Info().
		Int("pages", len(result.Pages)).
		Int("native", result.NativePages).
		Int("ocr", result.OCRPages).
		Int("failed", result.FailedPages).
		Int("chars", result.Chars()).
		Dur("duration", result.Duration).
		Msg("Extraction completed")

	if pagesDir != "" {
		files, err := output.WritePages(pagesDir, prefix, result)
		if err != nil {
			return err
		}
		log.Info().
			Str("dir", pagesDir).
			Int("pages", len(files)).
			Msg("Per-page text files written")
	}

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		return writeOutput(outputPath, append(data, '\n'), log)
	}

	if outputPath == "" && pagesDir != "" {
		// Per-page mode already wrote everything; skip the stdout dump.
		return nil
	}
	return writeOutput(outputPath, []byte(output.DocumentText(result)), log)
}

// writeOutput writes data to the given file, or stdout when path is empty.
func writeOutput(path string, data []byte, log zerolog.Logger) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", path).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", path).
		Int("bytes", len(data)).
		Msg("Extracted text written to file")
	return nil
}
