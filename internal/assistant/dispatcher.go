package assistant

import (
	"context"
	"fmt"
	"time"

	"health-ai/internal/apperr"
	"health-ai/internal/gpt"
	"health-ai/pkg/logger"
)

type Stage string

const (
	StageResolvingProfile Stage = "resolving_profile"
	StageAwaitingModel    Stage = "awaiting_model"
	StageValidating       Stage = "validating"
	StagePersisting       Stage = "persisting"
)

// Completer is the LLM boundary. Implemented by *gpt.Client.
type Completer interface {
	Complete(ctx context.Context, prompt gpt.Prompt) (string, error)
}

// Dispatcher runs one chat message through profile lookup, the model and
// persistence. Stages run strictly in order and the first failure ends the
// request.
type Dispatcher struct {
	profiles *Profiles
	llm      Completer
	writer   *Writer
	logger   *logger.Logger
}

func NewDispatcher(profiles *Profiles, llm Completer, writer *Writer, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		profiles: profiles,
		llm:      llm,
		writer:   writer,
		logger:   logger,
	}
}

func (d *Dispatcher) Handle(ctx context.Context, rawUserID, message string) (Response, error) {
	start := time.Now()
	log := d.logger.With("user_id", rawUserID)

	profile, err := d.profiles.Lookup(ctx, rawUserID)
	if err != nil {
		return nil, d.fail(log, StageResolvingProfile, err)
	}

	prompt := gpt.ComposePrompt(profile, message)

	raw, err := d.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, d.fail(log, StageAwaitingModel, err)
	}

	resp, err := ParseResponse(raw)
	if err != nil {
		if apperr.Is(err, apperr.KindMalformedResponse) {
			log.Warn("Failed to parse AI response", "raw", raw)
		}
		return nil, d.fail(log, StageValidating, err)
	}

	if err := d.writer.Persist(ctx, profile.ID, resp); err != nil {
		return nil, d.fail(log, StagePersisting, err)
	}

	log.Info("AI request handled",
		"response_type", resp.Type(),
		"prompt_version", prompt.Version,
		"elapsed", time.Since(start))
	return resp, nil
}

func (d *Dispatcher) fail(log *logger.Logger, stage Stage, err error) error {
	kind := apperr.KindOf(err)
	if kind.Status() >= 500 {
		log.Error("AI request failed", "stage", stage, "kind", kind.String(), "error", err)
	} else {
		log.Info("AI request rejected", "stage", stage, "kind", kind.String(), "error", err)
	}
	return fmt.Errorf("%s: %w", stage, err)
}
