package llmclient

import (
	"context"
	"sync"
)

// FakeClient returns scripted answers without network access. Reply, when
// set, decides the answer; otherwise Text/Err are returned as-is. It
// records every call for assertions.
type FakeClient struct {
	Text  string
	Err   error
	Reply func(system, user string) (string, error)

	mu    sync.Mutex
	calls []FakeCall
}

// FakeCall is one recorded Complete invocation.
type FakeCall struct {
	System string
	User   string
}

// NewFakeClient returns a client that always answers text.
func NewFakeClient(text string) *FakeClient { return &FakeClient{Text: text} }

// NewIdentityFakeClient answers every request with the identity query, which
// makes offline runs echo their input.
func NewIdentityFakeClient() *FakeClient { return NewFakeClient(`{"query": "."}`) }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{System: system, User: user})
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Reply != nil {
		return f.Reply(system, user)
	}
	return f.Text, f.Err
}

// Calls returns a copy of the recorded invocations.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}
