// Package pipeline runs one request through validation, query synthesis
// and query execution.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"jqery/internal/apierr"
	"jqery/internal/jq"
	"jqery/internal/logger"
	"jqery/internal/payload"
	"jqery/internal/requestid"
)

// QuerySynthesizer turns a payload and an intent into a jq expression.
type QuerySynthesizer interface {
	Synthesize(ctx context.Context, p payload.RawPayload, intent string) (string, error)
}

// Request is the caller input: an optional upload, optional pasted text,
// and the natural-language intent.
type Request struct {
	File   []byte
	Text   string
	Intent string
}

// Service is stateless across requests; one instance serves concurrent callers.
type Service struct {
	synth QuerySynthesizer
	exec  jq.Executor
	log   *logger.Logger
}

func New(synth QuerySynthesizer, exec jq.Executor, log *logger.Logger) *Service {
	if exec == nil {
		exec = jq.New()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{synth: synth, exec: exec, log: log}
}

type run struct {
	out Outcome
	log *logger.Logger
}

func (r *run) enter(s Stage) {
	r.out.Stages = append(r.out.Stages, s)
	r.log.Debug("stage", "stage", s)
}

// fail records a terminal failure. Errors that arrive unclassified are
// attributed to the stage that produced them.
func (r *run) fail(at Stage, err error) Outcome {
	var e *apierr.Error
	if !errors.As(err, &e) {
		switch at {
		case StageSynthesizing:
			err = apierr.SynthesisFailure(err)
		case StageExecuting:
			err = apierr.ExecutionError(err)
		}
	}
	e = apierr.As(err)
	r.out.Err = e
	r.out.FailedAt = at
	r.enter(StageFailed)
	r.log.Warn("request failed", "stage", at, "kind", e.Kind, "error", err)
	return r.out
}

// Run executes the pipeline. Every failure is terminal and reported in the
// returned Outcome; Run itself never returns an error.
func (s *Service) Run(ctx context.Context, req Request) Outcome {
	ctx, id := requestid.Ensure(ctx)
	r := &run{log: s.log.With("request_id", id)}
	start := time.Now()
	r.enter(StageReceived)

	r.enter(StageValidating)
	intent := strings.TrimSpace(req.Intent)
	if intent == "" {
		return r.fail(StageValidating, apierr.MissingInput("intent is required"))
	}
	p, err := payload.Normalize(req.File, req.Text)
	if err != nil {
		return r.fail(StageValidating, err)
	}

	r.enter(StageSynthesizing)
	if s.synth == nil {
		return r.fail(StageSynthesizing, apierr.SynthesisFailure(nil))
	}
	query, err := s.synth.Synthesize(ctx, p, intent)
	if err != nil {
		return r.fail(StageSynthesizing, err)
	}
	r.out.Query = query

	r.enter(StageExecuting)
	result, err := s.exec.Execute(ctx, query, p.Bytes())
	if err != nil {
		return r.fail(StageExecuting, err)
	}
	r.out.Result = result
	r.enter(StageSucceeded)
	r.log.Info("request succeeded", "source", p.Source, "query", query, "elapsed", time.Since(start))
	return r.out
}
