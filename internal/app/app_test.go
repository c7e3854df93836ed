package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jqery/internal/config"
	"jqery/internal/handler"
	llmclient "jqery/internal/llm/client"
	"jqery/internal/payload"
	"jqery/internal/pipeline"
	"jqery/internal/server"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.LLM.Provider = llmclient.ProviderFake
	return &cfg
}

func TestNewCoreFakeProvider(t *testing.T) {
	core, err := NewCore(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer core.Close()

	out := core.Pipeline.Run(context.Background(), pipeline.Request{Text: `{"a":1}`, Intent: "anything"})
	require.True(t, out.OK(), "unexpected error: %v", out.Err)
	assert.Equal(t, ".", out.Query)
}

func TestNewCoreUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "mystery"
	_, err := NewCore(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, llmclient.ErrUnknownProvider)
}

func TestNewCoreMissingKeyFailsAtSynthesis(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = llmclient.ProviderAnthropic
	cfg.LLM.APIKey = ""
	core, err := NewCore(context.Background(), cfg, nil)
	require.NoError(t, err)

	out := core.Pipeline.Run(context.Background(), pipeline.Request{Text: `{}`, Intent: "x"})
	require.False(t, out.OK())
	assert.Equal(t, pipeline.StageSynthesizing, out.FailedAt)
	assert.ErrorIs(t, out.Err, llmclient.ErrMissingAPIKey)
}

func TestNewCoreCachesSyntheses(t *testing.T) {
	cfg := testConfig()
	cfg.Synth.CacheSize = 4
	fake := llmclient.NewFakeClient(`{"query": ".a"}`)
	core, err := NewCoreWithClient(cfg, fake, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out := core.Pipeline.Run(context.Background(), pipeline.Request{Text: `{"a":1}`, Intent: "a"})
		require.True(t, out.OK())
	}
	assert.Len(t, fake.Calls(), 1)
}

func TestNewCoreHonorsTruncation(t *testing.T) {
	cfg := testConfig()
	cfg.Synth.MaxArrayLength = payload.DefaultMaxArrayLength
	fake := llmclient.NewFakeClient(`{"query": "."}`)
	core, err := NewCoreWithClient(cfg, fake, nil)
	require.NoError(t, err)

	out := core.Pipeline.Run(context.Background(), pipeline.Request{Text: `[1,2,3,4,5]`, Intent: "all"})
	require.True(t, out.OK())
	assert.Contains(t, fake.Calls()[0].User, "[1,2,3]")
	assert.Len(t, out.Result, 5)
}

func TestAppServesQueries(t *testing.T) {
	cfg := testConfig()
	core, err := NewCoreWithClient(cfg, llmclient.NewFakeClient(`{"query": ".n"}`), nil)
	require.NoError(t, err)
	a := NewWithCore(cfg, core, nil)
	require.NotNil(t, a.Logger())

	mux := server.NewMux(
		handler.NewQueryHandler(core.Pipeline, cfg.HTTP.MaxUploadBytes, nil),
		handler.NewHealthHandler(cfg.LLM.Provider),
		a.Logger(),
	)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/query", "application/json", strings.NewReader(`{"jsonText":{"n":7},"intent":"n"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, a.Shutdown(context.Background()))
}
