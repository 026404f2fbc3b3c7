// Package backend is the HTTP client for the agriculture assistant service:
// chat replies, speech-to-text and text-to-speech.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/longkey1/merokisan/internal/audio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5000"

	chatPath       = "/chat"
	transcribePath = "/transcribe"
	speakPath      = "/speak"

	// errors from the service are echoed into logs; cap what we read
	maxErrorBody = 4 << 10
)

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /chat
type ChatResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

// TranscribeResponse is the body returned by POST /transcribe
type TranscribeResponse struct {
	Text string `json:"text"`
}

// SpeakRequest is the body of POST /speak
type SpeakRequest struct {
	Text string `json:"text"`
}

// Speech is synthesized audio returned by POST /speak
type Speech struct {
	Data        []byte
	ContentType string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Client talks to the assistant backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	requestID  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// WithRequestID tags every request with an X-Request-ID header
func WithRequestID(id string) Option {
	return func(cl *Client) { cl.requestID = id }
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends one message and returns the assistant's reply. A response
// without a reply field yields an empty string and no error; a server error
// message in such a response is logged.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return "", errors.Wrap(err, "marshal chat request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, chatPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var result ChatResponse
	if err := c.doJSON(req, &result); err != nil {
		return "", err
	}
	if result.Reply == "" && result.Error != "" {
		log.Warn().Str("server_error", result.Error).Msg("backend: chat returned no reply")
	}
	return result.Reply, nil
}

// Transcribe uploads a clip as multipart field "file" together with the
// language code and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, clip audio.Clip, language string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := clip.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if clip.ContentType != "" {
		header.Set("Content-Type", clip.ContentType)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", errors.Wrap(err, "write form file")
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", errors.Wrap(err, "write language field")
		}
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart writer")
	}

	req, err := c.newRequest(ctx, http.MethodPost, transcribePath, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result TranscribeResponse
	if err := c.doJSON(req, &result); err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text), nil
}

// Speak asks the backend to synthesize text and returns the audio bytes.
func (c *Client) Speak(ctx context.Context, text string) (*Speech, error) {
	body, err := json.Marshal(SpeakRequest{Text: text})
	if err != nil {
		return nil, errors.Wrap(err, "marshal speak request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, speakPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read speech audio")
	}
	if len(data) == 0 {
		return nil, errors.New("backend returned empty audio")
	}
	return &Speech{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Ping fetches the service banner from GET /.
func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", errors.Wrap(err, "read banner")
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s request", path)
	}
	if c.requestID != "" {
		req.Header.Set("X-Request-ID", c.requestID)
	}
	return req, nil
}

// do sends req and converts non-2xx responses into *StatusError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("backend: request failed")
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend: response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}
	return resp, nil
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", req.URL.Path)
	}
	return nil
}
