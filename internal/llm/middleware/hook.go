package llmmiddleware

import (
	"context"

	llmclient "jqery/internal/llm/client"
)

// PromptHook observes a completion call from both sides.
type PromptHook interface {
	Before(ctx context.Context, system, user string)
	After(ctx context.Context, text string, err error)
}

type ctxKeyHook struct{}

// WithPromptHook attaches a PromptHook to the context. The WithHooks
// middleware invokes it around each request.
func WithPromptHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if h, ok := ctx.Value(ctxKeyHook{}).(PromptHook); ok {
		return h
	}
	return nil
}

// WithHooks calls HookFrom(ctx).Before/After around Complete.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &hooked{next: next}
	}
}

type hooked struct{ next llmclient.LLMClient }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) Complete(ctx context.Context, system, user string) (string, error) {
	hook := HookFrom(ctx)
	if hook != nil {
		hook.Before(ctx, system, user)
	}
	text, err := h.next.Complete(ctx, system, user)
	if hook != nil {
		hook.After(ctx, text, err)
	}
	return text, err
}

// HookFuncs adapts plain functions to PromptHook. Nil fields are skipped.
type HookFuncs struct {
	OnBefore func(ctx context.Context, system, user string)
	OnAfter  func(ctx context.Context, text string, err error)
}

func (f HookFuncs) Before(ctx context.Context, system, user string) {
	if f.OnBefore != nil {
		f.OnBefore(ctx, system, user)
	}
}

func (f HookFuncs) After(ctx context.Context, text string, err error) {
	if f.OnAfter != nil {
		f.OnAfter(ctx, text, err)
	}
}
