// Package jq runs jq expressions against JSON documents using gojq.
package jq

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"

	"jqery/internal/apierr"
	"jqery/internal/util/jsonutil"
)

// Executor evaluates a jq expression against raw JSON text.
type Executor interface {
	Execute(ctx context.Context, expression string, raw []byte) (any, error)
}

// Gojq is the default Executor.
type Gojq struct {
	// MaxResults caps how many outputs are collected from one expression.
	// Zero means no cap.
	MaxResults int
}

func New() *Gojq { return &Gojq{MaxResults: 10000} }

// Compile parses and compiles expression without running it.
func Compile(expression string) (*gojq.Code, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	return gojq.Compile(q)
}

// Execute runs expression against raw. A single output is returned as-is,
// several outputs are returned as an array, and no output yields nil.
// Non-finite numbers are rewritten as jq prints them (NaN as null, ±Inf as
// ±math.MaxFloat64). Every evaluator failure is reported as an
// apierr.ExecutionError.
func (g *Gojq) Execute(ctx context.Context, expression string, raw []byte) (any, error) {
	code, err := Compile(expression)
	if err != nil {
		return nil, apierr.ExecutionError(err)
	}
	input, err := jsonutil.Decode(raw)
	if err != nil {
		return nil, apierr.ExecutionError(fmt.Errorf("decode input: %w", err))
	}

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, apierr.ExecutionError(err)
		}
		v, _ = normalizeFloats(v)
		results = append(results, v)
		if g.MaxResults > 0 && len(results) > g.MaxResults {
			return nil, apierr.ExecutionError(fmt.Errorf("expression produced more than %d results", g.MaxResults))
		}
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
