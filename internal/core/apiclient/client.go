// Package apiclient is the gateway to the remote shipping REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// TokenSource yields the access token of the session bound to ctx, or "" when anonymous.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// TokenRejecter is implemented by a TokenSource that must hear about a token the API
// answered with 401.
type TokenRejecter interface {
	Reject(ctx context.Context)
}

// Client issues JSON calls against the API base URL. It never retries.
type Client struct {
	baseURL string
	header  string
	http    *http.Client
	tokens  TokenSource
}

// New creates an anonymous Client. header is the custom access-token header name.
func New(baseURL, header string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  header,
		http:    httpClient,
	}
}

// WithTokens returns a copy of the client that authenticates every call with tokens.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Get issues a GET with optional query parameters and decodes the payload into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Patch sends body as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// File is one part of a multipart upload.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart/form-data body. Fields keep insertion order.
type Form struct {
	Fields [][2]string
	Files  []File
}

// Set appends a text field.
func (f *Form) Set(name, value string) {
	f.Fields = append(f.Fields, [2]string{name, value})
}

// PostMultipart uploads form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form Form, out any) error {
	return c.sendMultipart(ctx, http.MethodPost, path, form, out)
}

// PatchMultipart uploads form as multipart/form-data.
func (c *Client) PatchMultipart(ctx context.Context, path string, form Form, out any) error {
	return c.sendMultipart(ctx, http.MethodPatch, path, form, out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form Form, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range form.Fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}
	for _, f := range form.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("failed to create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.do(ctx, method, path, &buf, w.FormDataContentType(), out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	authenticated := false
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set(c.header, token)
			authenticated = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: DefaultErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: DefaultErrorMessage, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusUnauthorized && authenticated {
			if r, ok := c.tokens.(TokenRejecter); ok {
				r.Reject(ctx)
			}
		}
		return fromResponse(resp.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], payload...)
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
