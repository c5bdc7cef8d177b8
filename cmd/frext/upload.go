package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aki307/frext/client"
	"github.com/aki307/frext/model"
	"github.com/aki307/frext/state"
	"github.com/aki307/frext/storage"
	"github.com/aki307/frext/upload"
	"github.com/spf13/cobra"
)

// uploadPrefs are remembered between runs, like the upload form's fields.
type uploadPrefs struct {
	TemplateID string `json:"templateId,omitempty"`
	Language   string `json:"language,omitempty"`
}

// storedResult is what the result command reads back from the session store.
type storedResult struct {
	FileName    string               `json:"fileName"`
	TemplateID  string               `json:"templateId,omitempty"`
	RecordID    string               `json:"recordId,omitempty"`
	ProcessedAt time.Time            `json:"processedAt"`
	Result      model.CompleteResult `json:"result"`
}

func newUploadCmd(a *app) *cobra.Command {
	var (
		templateID string
		language   string
		enhance    bool
		tables     bool
		steps      bool
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Run OCR and summarization on an image or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			prefs := state.NewPersisted(a.local, "upload_prefs", uploadPrefs{Language: "ja"}, a.logger)
			current := prefs.Get(ctx)
			if !cmd.Flags().Changed("template") {
				templateID = current.TemplateID
			}
			if !cmd.Flags().Changed("lang") {
				language = current.Language
			}

			f, contentType, err := upload.Validator{MaxSize: a.cfg.MaxFileSize()}.Open(path)
			if err != nil {
				var verr *upload.ValidationError
				if errors.As(err, &verr) {
					return errors.New(verr.Message)
				}
				return err
			}
			defer f.Close()
			a.logger.Debug("upload.validated", "file", path, "content_type", contentType)

			req := client.OCRRequest{
				FileName:   filepath.Base(path),
				Image:      f,
				TemplateID: templateID,
				Options: &model.ProcessingOptions{
					Language:      language,
					EnhanceImage:  enhance,
					ExtractTables: tables,
				},
			}

			// a restored session puts the bearer token on every call below
			signedIn := a.auth.AutoLogin(ctx)

			var resp *model.APIResponse[model.CompleteResult]
			if steps {
				resp = a.processInSteps(ctx, req)
			} else {
				a.printf("Processing %s...\n", req.FileName)
				resp = a.client.ProcessComplete(ctx, req)
			}
			if !resp.Success || resp.Data == nil {
				return failed("upload", resp.Error, resp)
			}

			prefs.Set(ctx, uploadPrefs{TemplateID: templateID, Language: language})

			stored := storedResult{
				FileName:    req.FileName,
				TemplateID:  templateID,
				ProcessedAt: time.Now().UTC(),
				Result:      *resp.Data,
			}
			if signedIn && !noSave {
				saved := a.client.SaveProcessingResult(ctx, model.ProcessingRecord{
					FileName:   req.FileName,
					TemplateID: templateID,
					Status:     model.StatusCompleted,
					OCRResult:  resp.Data.OCRResult,
					GPTResult:  resp.Data.GPTResult,
				})
				if saved.Success && saved.Data != nil {
					stored.RecordID = saved.Data.ID
				} else {
					a.logger.Warn("upload.save_failed", "error", saved.Error)
				}
			}

			if err := saveSessionResult(ctx, a.session, stored); err != nil {
				a.logger.Warn("upload.session_store_failed", "error", err)
			}

			printResult(a, stored)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", "", "template id (remembered between runs)")
	cmd.Flags().StringVar(&language, "lang", "", "document language, e.g. ja or en (remembered between runs)")
	cmd.Flags().BoolVar(&enhance, "enhance", false, "ask the backend to enhance the image before OCR")
	cmd.Flags().BoolVar(&tables, "tables", false, "ask the backend to extract tables")
	cmd.Flags().BoolVar(&steps, "steps", false, "run OCR and GPT as separate calls and show each stage")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the result to history")
	return cmd
}

// processInSteps runs OCR then GPT client-side, printing each stage.
func (a *app) processInSteps(ctx context.Context, req client.OCRRequest) *model.APIResponse[model.CompleteResult] {
	process := state.NewCompleteProcess(a.client)
	unsubscribe := process.Subscribe(func(s state.ProcessState) {
		switch s.Stage {
		case state.StageOCR:
			a.printf("[1/2] OCR: %s\n", req.FileName)
		case state.StageGPT:
			if s.OCRResult != nil {
				a.printf("[2/2] Summarizing %d characters\n", len([]rune(s.OCRResult.ExtractedText)))
			}
		}
	})
	defer unsubscribe()
	return process.Process(ctx, req)
}

func saveSessionResult(ctx context.Context, session storage.Store, r storedResult) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return session.Set(ctx, storage.ProcessingResult, raw)
}

func loadSessionResult(ctx context.Context, session storage.Store) (*storedResult, error) {
	raw, err := session.Get(ctx, storage.ProcessingResult)
	if err != nil {
		return nil, err
	}
	var r storedResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}
	return &r, nil
}
