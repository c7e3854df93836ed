package pipeline

import (
	"net/http"

	"jqery/internal/apierr"
	"jqery/internal/util/jsonutil"
)

// Stage is a step of the per-request state machine.
type Stage string

const (
	StageReceived     Stage = "received"
	StageValidating   Stage = "validating"
	StageSynthesizing Stage = "synthesizing"
	StageExecuting    Stage = "executing"
	StageSucceeded    Stage = "succeeded"
	StageFailed       Stage = "failed"
)

// Outcome is the result of one pipeline run. Exactly one of Result (on
// success) or Err is meaningful.
type Outcome struct {
	Query  string
	Result any
	Err    *apierr.Error
	// Stages lists every stage entered, in order, ending in a terminal stage.
	Stages []Stage
	// FailedAt is the stage that produced Err.
	FailedAt Stage
}

func (o Outcome) OK() bool { return o.Err == nil }

// Status is the HTTP-equivalent status of the outcome.
func (o Outcome) Status() int {
	if o.Err == nil {
		return http.StatusOK
	}
	return o.Err.Status
}

// Envelope is the caller-facing shape of the outcome.
func (o Outcome) Envelope() Envelope {
	if o.Err != nil {
		return Envelope{Error: o.Err.Error(), failed: true}
	}
	return Envelope{Result: o.Result}
}

// Envelope marshals as {"result": <value>} or {"error": "<message>"}. A
// null result is still emitted as {"result": null}.
type Envelope struct {
	Result any
	Error  string
	failed bool
}

func (e Envelope) IsError() bool { return e.failed }

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.failed {
		return jsonutil.MarshalNoEscape(struct {
			Error string `json:"error"`
		}{e.Error})
	}
	return jsonutil.MarshalNoEscape(struct {
		Result any `json:"result"`
	}{e.Result})
}
