package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/deep-report/pkg/research"
)

// Researcher runs one deep research job. *research.Client satisfies this; the
// indirection exists so the pipeline can be driven without the live service.
type Researcher interface {
	DeepResearch(ctx context.Context, query string, params research.Params, onActivity research.ActivityFunc) (*research.Result, error)
}

// Request describes one report run.
type Request struct {
	Topic       string
	Params      research.Params
	SourceLimit int
}

// Report is the completed output of a run.
type Report struct {
	Topic         string            `json:"topic"`
	FinalAnalysis string            `json:"finalAnalysis"`
	Sources       []research.Source `json:"sources"`
	SourcesDigest string            `json:"sourcesDigest"`
	Draft         string            `json:"draft"`
	Enhanced      string            `json:"enhanced"`
}

// Pipeline chains research, source formatting, drafting and enhancement into
// one linear pass. No step retries; a failure ends the run with a typed
// *Error for its stage.
type Pipeline struct {
	Researcher Researcher
	LLM        llms.Model
	Logger     *slog.Logger

	// OnActivity and OnStage are optional progress observers. The run's
	// outcome never depends on them.
	OnActivity research.ActivityFunc
	OnStage    func(Stage)
}

func NewPipeline(researcher Researcher, llm llms.Model) *Pipeline {
	return &Pipeline{
		Researcher: researcher,
		LLM:        llm,
		Logger:     slog.Default(),
	}
}

// Run executes research, format, draft and enhance in order for req.Topic.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}

	p.setStage(StageResearch)
	p.Logger.Info("Starting deep research", "topic", topic)
	res, ferr := p.fetch(ctx, topic, req.Params)
	if !res.Success {
		p.Logger.Error("Deep research failed", "error", res.Error)
		return nil, p.fail(StageResearch, ferr)
	}

	p.setStage(StageFormat)
	digest := FormatSources(res.Sources, req.SourceLimit)
	p.Logger.Info("Formatted sources", "count", len(res.Sources))

	p.setStage(StageDraft)
	p.Logger.Info("Generating initial report", "topic", topic)
	draft, err := p.generate(ctx, draftSystemPrompt, draftUserPrompt(topic, digest), draftTemperature)
	if err != nil {
		p.Logger.Error("Initial report generation failed", "error", err)
		return nil, p.fail(StageDraft, err)
	}

	p.setStage(StageEnhance)
	p.Logger.Info("Enhancing report")
	enhanced, err := p.generate(ctx, enhanceSystemPrompt, enhanceUserPrompt(draft), enhanceTemperature)
	if err != nil {
		p.Logger.Error("Enhancement failed", "error", err)
		return nil, p.fail(StageEnhance, err)
	}

	p.Logger.Info("Report complete", "topic", topic, "length", len(enhanced))
	return &Report{
		Topic:         topic,
		FinalAnalysis: res.FinalAnalysis,
		Sources:       res.Sources,
		SourcesDigest: digest,
		Draft:         draft,
		Enhanced:      enhanced,
	}, nil
}

// fetch captures any research error into a failed Result so the outcome is
// representable the same way whether the service answered or not. The
// original error is returned alongside for classification.
func (p *Pipeline) fetch(ctx context.Context, topic string, params research.Params) (*research.Result, error) {
	res, err := p.Researcher.DeepResearch(ctx, topic, params, p.OnActivity)
	if err != nil {
		return research.Failure(err.Error()), err
	}
	if res == nil {
		err := fmt.Errorf("research returned no result")
		return research.Failure(err.Error()), err
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "research was not successful"
		}
		return research.Failure(msg), fmt.Errorf("%s", msg)
	}
	if res.Sources == nil {
		res.Sources = []research.Source{}
	}
	return res, nil
}

// generate issues one completion call with a system and a user message.
func (p *Pipeline) generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	resp, err := p.LLM.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func (p *Pipeline) fail(stage Stage, err error) *Error {
	return &Error{Stage: stage, Kind: Classify(err), Message: err.Error()}
}

func (p *Pipeline) setStage(stage Stage) {
	if p.OnStage != nil {
		p.OnStage(stage)
	}
}
