package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jqery/internal/jq"
	llmclient "jqery/internal/llm/client"
	"jqery/internal/pipeline"
	"jqery/internal/synth"
)

const itemsDoc = `{"items":[{"path":"/a"},{"path":"/a"},{"path":"/b"}]}`

func newHandler(reply string, limit int64) (*QueryHandler, *llmclient.FakeClient) {
	fake := llmclient.NewFakeClient(reply)
	svc := pipeline.New(synth.New(fake), jq.New(), nil)
	return NewQueryHandler(svc, limit, nil), fake
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartBody(t *testing.T, file string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != "" {
		fw, err := mw.CreateFormFile(fieldFile, "data.json")
		require.NoError(t, err)
		_, err = fw.Write([]byte(file))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleQueryMultipartUpload(t *testing.T) {
	h, fake := newHandler(`{"query": "[.items[].path] | unique"}`, 1<<20)
	body, ct := multipartBody(t, itemsDoc, map[string]string{
		fieldText:   `{"ignored":true}`,
		fieldIntent: "get unique path values",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/query", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.HandleQuery(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"result": []any{"/a", "/b"}}, decode(t, rec))
	require.Len(t, fake.Calls(), 1)
	assert.Contains(t, fake.Calls()[0].User, `"path"`)
	assert.NotContains(t, fake.Calls()[0].User, "ignored")
}

func TestHandleQueryLegacyFormFields(t *testing.T) {
	h, _ := newHandler(`{"query": ".name"}`, 1<<20)
	form := url.Values{fieldTextAlias: {`{"name":"jq"}`}, fieldIntentAlias: {"the name"}}
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.HandleQuery(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"result": "jq"}, decode(t, rec))
}

func TestHandleQueryJSONBody(t *testing.T) {
	for name, payload := range map[string]string{
		"string document": `{"jsonText": "{\"n\": 2}", "intent": "n"}`,
		"inline document": `{"jsonText": {"n": 2}, "intent": "n"}`,
		"aliases":         `{"inputJson": {"n": 2}, "query": "n"}`,
	} {
		t.Run(name, func(t *testing.T) {
			h, _ := newHandler(`{"query": ".n"}`, 1<<20)
			req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json; charset=utf-8")
			rec := httptest.NewRecorder()

			h.HandleQuery(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, map[string]any{"result": float64(2)}, decode(t, rec))
		})
	}
}

func TestHandleQueryErrors(t *testing.T) {
	cases := map[string]struct {
		reply   string
		ct      string
		body    string
		status  int
		message string
	}{
		"no json": {
			reply: `{"query": "."}`, ct: "application/json",
			body: `{"intent": "anything"}`, status: http.StatusBadRequest, message: "no JSON provided",
		},
		"invalid pasted json": {
			reply: `{"query": "."}`, ct: "application/json",
			body: `{"jsonText": "{oops", "intent": "anything"}`, status: http.StatusBadRequest, message: "invalid JSON",
		},
		"malformed body": {
			reply: `{"query": "."}`, ct: "application/json",
			body: `{"jsonText":`, status: http.StatusBadRequest, message: "malformed request body",
		},
		"synthesis failure": {
			reply: "not-json", ct: "application/json",
			body: `{"jsonText": "{}", "intent": "x"}`, status: http.StatusInternalServerError, message: "failed to generate a query",
		},
		"execution error": {
			reply: `{"query": ".a + 1"}`, ct: "application/json",
			body: `{"jsonText": "{\"a\":[1]}", "intent": "x"}`, status: http.StatusInternalServerError, message: "query execution failed",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h, _ := newHandler(tc.reply, 1<<20)
			req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.ct)
			rec := httptest.NewRecorder()

			h.HandleQuery(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.NotContains(t, body, "result")
			assert.Contains(t, body["error"], tc.message)
		})
	}
}

func TestHandleQueryBodyTooLarge(t *testing.T) {
	h, fake := newHandler(`{"query": "."}`, 64)
	body, ct := multipartBody(t, `{"big":"`+strings.Repeat("x", 1024)+`"}`, map[string]string{fieldIntent: "all"})
	req := httptest.NewRequest(http.MethodPost, "/api/query", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.HandleQuery(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "exceeds 64 bytes")
	assert.Empty(t, fake.Calls())
}

func TestHandleQueryMethodNotAllowed(t *testing.T) {
	h, _ := newHandler(`{"query": "."}`, 1<<20)
	rec := httptest.NewRecorder()
	h.HandleQuery(rec, httptest.NewRequest(http.MethodGet, "/api/query", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler("fake").HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok", "provider": "fake"}, decode(t, rec))
}

func TestHandleQueryNonFiniteResult(t *testing.T) {
	h, _ := newHandler(`{"query": "[.xs[] | log]"}`, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"jsonText":{"xs":[1,0]},"intent":"logs"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleQuery(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"result":[0,-1.7976931348623157e+308]}`, rec.Body.String())
}
