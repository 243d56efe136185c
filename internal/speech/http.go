package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/syedsofiyan2004/rem/internal/reliability"
)

// HTTPConfig configures one regional speech-backend client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Region  string
	Timeout time.Duration
}

// HTTPBackend talks to a regional speech-synthesis HTTP endpoint.
type HTTPBackend struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPBackend(cfg HTTPConfig) *HTTPBackend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &HTTPBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (b *HTTPBackend) Region() string { return b.cfg.Region }

type synthesizeRequest struct {
	VoiceID      string `json:"voice_id"`
	Engine       string `json:"engine"`
	TextType     string `json:"text_type"`
	Text         string `json:"text"`
	OutputFormat string `json:"output_format"`
}

func (b *HTTPBackend) Synthesize(ctx context.Context, in SynthesisInput) ([]byte, error) {
	return b.post(ctx, synthesizeRequest{
		VoiceID:      in.VoiceID,
		Engine:       string(in.Engine),
		TextType:     string(in.TextType),
		Text:         in.Text,
		OutputFormat: "mp3",
	})
}

func (b *HTTPBackend) SpeechMarks(ctx context.Context, in SynthesisInput) ([]Viseme, error) {
	raw, err := b.post(ctx, synthesizeRequest{
		VoiceID:      in.VoiceID,
		Engine:       string(in.Engine),
		TextType:     string(in.TextType),
		Text:         in.Text,
		OutputFormat: "marks",
	})
	if err != nil {
		return nil, err
	}
	return ParseMarkStream(raw), nil
}

func (b *HTTPBackend) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("create voices request: %w", err)
	}
	b.setHeaders(req)

	res, err := b.client.Do(req)
	if err != nil {
		return nil, &BackendError{Code: CodeUnavailable, Message: err.Error()}
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, classifyResponse(res.StatusCode, body)
	}

	var parsed struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode voices response: %w", err)
	}
	return parsed.Voices, nil
}

func (b *HTTPBackend) post(ctx context.Context, payload synthesizeRequest) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/v1/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	b.setHeaders(req)

	res, err := b.client.Do(req)
	if err != nil {
		// Network failures count against the region, not the voice.
		return nil, &BackendError{Code: CodeUnavailable, Message: err.Error()}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, classifyResponse(res.StatusCode, data)
	}
	return data, nil
}

func (b *HTTPBackend) setHeaders(req *http.Request) {
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}
	if b.cfg.Region != "" {
		req.Header.Set("X-Region", b.cfg.Region)
	}
}

// classifyResponse maps an error response onto the closed backend code
// set. The backend reports codes from the same set; unknown codes fall
// back to a status-based classification.
func classifyResponse(status int, body []byte) error {
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &parsed)

	code := ErrorCode(strings.ToLower(strings.TrimSpace(parsed.Code)))
	switch code {
	case CodeInvalidSSML, CodeEngineNotSupported, CodeTextTooLong,
		CodeInvalidVoice, CodeUnsupportedAlphabet, CodeLanguageNotSupported,
		CodeValidation, CodeThrottled, CodeUnavailable:
		return &BackendError{Code: code, Message: parsed.Message}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &BackendError{Code: CodeThrottled, Message: parsed.Message}
	case reliability.IsRetryableHTTPStatus(status):
		return &BackendError{Code: CodeUnavailable, Message: parsed.Message}
	case status >= 400 && status < 500:
		return &BackendError{Code: CodeValidation, Message: parsed.Message}
	default:
		return &BackendError{Code: CodeInternal, Message: fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(body)))}
	}
}
