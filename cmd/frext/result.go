package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aki307/frext/storage"
	"github.com/spf13/cobra"
)

func newResultCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "result",
		Short: "Show the result of the last upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := loadSessionResult(cmd.Context(), a.session)
			if errors.Is(err, storage.ErrNotFound) {
				return errors.New("no processing result yet; run `frext upload <file>` first")
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printResult(a, *r)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored result as JSON")
	return cmd
}

func printResult(a *app, r storedResult) {
	a.printf("File:       %s\n", r.FileName)
	if r.TemplateID != "" {
		a.printf("Template:   %s\n", r.TemplateID)
	}
	if r.RecordID != "" {
		a.printf("Saved as:   %s\n", r.RecordID)
	}

	if ocr := r.Result.OCRResult; ocr != nil {
		a.printf("OCR:        %.0f%% confidence, %.2fs\n", ocr.Confidence*100, ocr.ProcessingTime)
		a.printf("\n%s\n\n", ocr.ExtractedText)
	}

	gpt := r.Result.GPTResult
	if gpt == nil {
		return
	}
	a.printf("Summary:    %s\n", gpt.Summary)
	if len(gpt.Categories) > 0 {
		a.printf("Categories: %s\n", strings.Join(gpt.Categories, ", "))
	}
	if len(gpt.ExtractedData) > 0 {
		keys := make([]string, 0, len(gpt.ExtractedData))
		for k := range gpt.ExtractedData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		a.printf("Fields:\n")
		for _, k := range keys {
			a.printf("  %-16s %s\n", k, fmt.Sprint(gpt.ExtractedData[k]))
		}
	}
}
