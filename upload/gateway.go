package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Session identifies one open multipart upload at the storage gateway.
type Session struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// PartDescriptor is the gateway's receipt for one uploaded part; the full
// ordered list is handed back on complete.
type PartDescriptor struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

// Gateway is the three-call multipart protocol exposed by the object storage
// worker, plus abort.
type Gateway interface {
	Start(ctx context.Context, filename string) (Session, error)
	UploadPart(ctx context.Context, uploadID, key string, partNumber int, size int64, body io.Reader) (PartDescriptor, error)
	Complete(ctx context.Context, uploadID, key string, parts []PartDescriptor) (string, error)
	Abort(ctx context.Context, uploadID, key string) error
}

// HTTPGateway talks to the storage worker over HTTP: JSON POSTs for the
// control calls and a binary PUT per part, all authorized with a shared
// bearer secret.
type HTTPGateway struct {
	BaseURL    string
	AuthSecret string
	Client     *http.Client
}

// NewHTTPGateway builds a gateway client with an explicit request timeout.
func NewHTTPGateway(baseURL, authSecret string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AuthSecret: authSecret,
		Client:     &http.Client{Timeout: timeout},
	}
}

type startRequest struct {
	Filename string `json:"filename"`
}

type completeRequest struct {
	UploadID string           `json:"uploadId"`
	Key      string           `json:"key"`
	Parts    []PartDescriptor `json:"parts"`
}

type completeResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Error   string `json:"error,omitempty"`
}

type abortRequest struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// Start opens a new multipart session for the given filename.
func (g *HTTPGateway) Start(ctx context.Context, filename string) (Session, error) {
	var session Session
	if err := g.postJSON(ctx, "/start", startRequest{Filename: filename}, &session); err != nil {
		return Session{}, err
	}
	if session.UploadID == "" || session.Key == "" {
		return Session{}, fmt.Errorf("gateway start returned empty session")
	}
	return session, nil
}

// UploadPart streams one part body to the gateway.
func (g *HTTPGateway) UploadPart(ctx context.Context, uploadID, key string, partNumber int, size int64, body io.Reader) (PartDescriptor, error) {
	q := url.Values{}
	q.Set("uploadId", uploadID)
	q.Set("key", key)
	q.Set("partNumber", strconv.Itoa(partNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.BaseURL+"/upload-part?"+q.Encode(), body)
	if err != nil {
		return PartDescriptor{}, err
	}
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+g.AuthSecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return PartDescriptor{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PartDescriptor{}, readGatewayError(resp)
	}

	var pd PartDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&pd); err != nil {
		return PartDescriptor{}, err
	}
	return pd, nil
}

// Complete finalizes the session with the full ordered part list and returns
// the finalized object key. The gateway validates the part list; its
// rejection propagates unchanged.
func (g *HTTPGateway) Complete(ctx context.Context, uploadID, key string, parts []PartDescriptor) (string, error) {
	var cr completeResponse
	if err := g.postJSON(ctx, "/complete", completeRequest{UploadID: uploadID, Key: key, Parts: parts}, &cr); err != nil {
		return "", err
	}
	if !cr.Success {
		return "", fmt.Errorf("gateway complete failed: %s", cr.Error)
	}
	return cr.Key, nil
}

// Abort releases the remote session. The gateway treats aborting an already
// released session as success, so repeated aborts are not an error.
func (g *HTTPGateway) Abort(ctx context.Context, uploadID, key string) error {
	return g.postJSON(ctx, "/abort", abortRequest{UploadID: uploadID, Key: key}, nil)
}

func (g *HTTPGateway) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.AuthSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readGatewayError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readGatewayError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
