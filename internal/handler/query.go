package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"jqery/internal/apierr"
	"jqery/internal/logger"
	"jqery/internal/pipeline"
	"jqery/internal/util/jsonutil"
)

// inputJson and query are the legacy form field names.
const (
	fieldFile        = "jsonFile"
	fieldText        = "jsonText"
	fieldTextAlias   = "inputJson"
	fieldIntent      = "intent"
	fieldIntentAlias = "query"
)

const multipartMemory = 8 << 20

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Outcome
}

type QueryHandler struct {
	svc            Runner
	maxUploadBytes int64
	log            *logger.Logger
}

func NewQueryHandler(svc Runner, maxUploadBytes int64, log *logger.Logger) *QueryHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &QueryHandler{svc: svc, maxUploadBytes: maxUploadBytes, log: log}
}

func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	req, err := h.readRequest(r)
	if err != nil {
		e := apierr.As(err)
		writeError(w, e.Status, e.Error())
		return
	}
	out := h.svc.Run(r.Context(), req)
	writeJSON(w, out.Status(), out.Envelope())
}

func (h *QueryHandler) readRequest(r *http.Request) (pipeline.Request, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	switch mediaType {
	case "application/json":
		return h.readJSON(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return pipeline.Request{}, h.bodyError(err)
		}
		defer r.MultipartForm.RemoveAll()
		file, err := readFormFile(r)
		if err != nil {
			return pipeline.Request{}, h.bodyError(err)
		}
		return formRequest(r, file), nil
	default:
		if err := r.ParseForm(); err != nil {
			return pipeline.Request{}, h.bodyError(err)
		}
		return formRequest(r, nil), nil
	}
}

type jsonBody struct {
	JSONText  json.RawMessage `json:"jsonText"`
	InputJSON json.RawMessage `json:"inputJson"`
	Intent    string          `json:"intent"`
	Query     string          `json:"query"`
}

// readJSON accepts jsonText either as a string holding the document or as
// the document itself.
func (h *QueryHandler) readJSON(r *http.Request) (pipeline.Request, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return pipeline.Request{}, h.bodyError(err)
	}
	var body jsonBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return pipeline.Request{}, apierr.InvalidInput("malformed request body", err)
	}
	text, err := documentText(body.JSONText)
	if err != nil {
		return pipeline.Request{}, err
	}
	if text == "" {
		if text, err = documentText(body.InputJSON); err != nil {
			return pipeline.Request{}, err
		}
	}
	return pipeline.Request{Text: text, Intent: firstNonEmpty(body.Intent, body.Query)}, nil
}

func documentText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", apierr.InvalidInput("malformed request body", err)
		}
		return s, nil
	}
	return string(raw), nil
}

func readFormFile(r *http.Request) ([]byte, error) {
	f, _, err := r.FormFile(fieldFile)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formRequest(r *http.Request, file []byte) pipeline.Request {
	return pipeline.Request{
		File:   file,
		Text:   firstNonEmpty(r.PostFormValue(fieldText), r.PostFormValue(fieldTextAlias)),
		Intent: firstNonEmpty(r.PostFormValue(fieldIntent), r.PostFormValue(fieldIntentAlias)),
	}
}

func (h *QueryHandler) bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		e := apierr.InvalidInput(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		e.Status = http.StatusRequestEntityTooLarge
		return e
	}
	return apierr.InvalidInput("malformed request body", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
