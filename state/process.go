package state

import (
	"context"
	"sync"

	"github.com/aki307/frext/client"
	"github.com/aki307/frext/model"
)

type Stage string

const (
	StageIdle     Stage = "idle"
	StageOCR      Stage = "ocr_processing"
	StageGPT      Stage = "gpt_processing"
	StageComplete Stage = "complete"
)

type OCRProcessor interface {
	ProcessOCR(ctx context.Context, in client.OCRRequest) *model.APIResponse[model.OCRResult]
}

type GPTProcessor interface {
	ProcessGPT(ctx context.Context, in client.GPTRequest) *model.APIResponse[model.GPTResult]
}

// ProcessState is shared by the OCR, GPT and combined trackers.
type ProcessState struct {
	Stage     Stage
	Loading   bool
	Error     string
	OCRResult *model.OCRResult
	GPTResult *model.GPTResult
}

type processTracker struct {
	mu    sync.RWMutex
	state ProcessState
	subs  listeners[ProcessState]
}

func (p *processTracker) set(s ProcessState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.subs.emit(s)
}

func (p *processTracker) State() ProcessState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *processTracker) Subscribe(fn func(ProcessState)) (unsubscribe func()) {
	return p.subs.add(fn)
}

func (p *processTracker) Reset() {
	p.set(ProcessState{Stage: StageIdle})
}

func failureMessage[T any](resp *model.APIResponse[T]) string {
	if resp.Error != "" {
		return resp.Error
	}
	return resp.Cause().Error()
}

type OCRProcess struct {
	processTracker
	api OCRProcessor
}

func NewOCRProcess(api OCRProcessor) *OCRProcess {
	p := &OCRProcess{api: api}
	p.state.Stage = StageIdle
	return p
}

func (p *OCRProcess) Process(ctx context.Context, in client.OCRRequest) *model.APIResponse[model.OCRResult] {
	p.set(ProcessState{Stage: StageOCR, Loading: true})

	resp := p.api.ProcessOCR(ctx, in)
	if !resp.Success {
		p.set(ProcessState{Stage: StageIdle, Error: failureMessage(resp)})
		return resp
	}
	p.set(ProcessState{Stage: StageComplete, OCRResult: resp.Data})
	return resp
}

type GPTProcess struct {
	processTracker
	api GPTProcessor
}

func NewGPTProcess(api GPTProcessor) *GPTProcess {
	p := &GPTProcess{api: api}
	p.state.Stage = StageIdle
	return p
}

func (p *GPTProcess) Process(ctx context.Context, in client.GPTRequest) *model.APIResponse[model.GPTResult] {
	p.set(ProcessState{Stage: StageGPT, Loading: true})

	resp := p.api.ProcessGPT(ctx, in)
	if !resp.Success {
		p.set(ProcessState{Stage: StageIdle, Error: failureMessage(resp)})
		return resp
	}
	p.set(ProcessState{Stage: StageComplete, GPTResult: resp.Data})
	return resp
}

// Processor is satisfied by *client.Client.
type Processor interface {
	OCRProcessor
	GPTProcessor
}

// CompleteProcess runs OCR and then GPT on the extracted text. If either
// step fails, both results are dropped and only the error remains.
type CompleteProcess struct {
	processTracker
	api Processor
}

func NewCompleteProcess(api Processor) *CompleteProcess {
	p := &CompleteProcess{api: api}
	p.state.Stage = StageIdle
	return p
}

func (p *CompleteProcess) Process(ctx context.Context, in client.OCRRequest) *model.APIResponse[model.CompleteResult] {
	p.set(ProcessState{Stage: StageOCR, Loading: true})

	ocr := p.api.ProcessOCR(ctx, in)
	if !ocr.Success || ocr.Data == nil {
		msg := client.MsgInvalidResponse
		if !ocr.Success {
			msg = failureMessage(ocr)
		}
		p.set(ProcessState{Stage: StageIdle, Error: msg})
		return model.Failure[model.CompleteResult](msg, ocr.Err)
	}

	p.set(ProcessState{Stage: StageGPT, Loading: true, OCRResult: ocr.Data})

	gpt := p.api.ProcessGPT(ctx, client.GPTRequest{
		Text:       ocr.Data.ExtractedText,
		TemplateID: in.TemplateID,
		Options:    in.Options,
		Headers:    in.Headers,
	})
	if !gpt.Success || gpt.Data == nil {
		msg := client.MsgInvalidResponse
		if !gpt.Success {
			msg = failureMessage(gpt)
		}
		p.set(ProcessState{Stage: StageIdle, Error: msg})
		return model.Failure[model.CompleteResult](msg, gpt.Err)
	}

	p.set(ProcessState{Stage: StageComplete, OCRResult: ocr.Data, GPTResult: gpt.Data})
	return model.OK(&model.CompleteResult{OCRResult: ocr.Data, GPTResult: gpt.Data}, gpt.Message)
}
