/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend holds the composer's narrow collaborator contracts: an
// HTTP client for the auth/session and post storage services, and a thin
// reference server implementing the same surface over Postgres. The
// composer's only obligation toward this package is producing a correctly
// encoded blob and a caption; everything else stays behind these two calls.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"sutomemo/internal/domain"
)

// Response schemas, checked at the trust boundary. A server speaking a
// different shape is rejected before any field is read.
const (
	sessionSchema = `{
		"type": "object",
		"required": ["user_id", "guest"],
		"properties": {
			"user_id": {"type": "string"},
			"guest": {"type": "boolean"}
		}
	}`
	postSchema = `{
		"type": "object",
		"required": ["id", "media_url", "mime_type"],
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"caption": {"type": "string"},
			"media_url": {"type": "string", "minLength": 1},
			"mime_type": {"type": "string", "minLength": 1}
		}
	}`
)

// Client talks to the posts backend. Token is a bearer token, typically
// loaded from the OS keyring by config.Load; an empty token means a guest
// session and Session short-circuits without a network round trip.
type Client struct {
	BaseURL string
	Token   string
	client  *http.Client
}

// NewClient creates a backend client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Session resolves the current user identity. Without a token the caller is
// a guest; guests may run the editor but save/export gating is up to the
// surrounding screen.
func (c *Client) Session(ctx context.Context) (domain.Session, error) {
	if c.Token == "" {
		return domain.Session{Guest: true}, nil
	}
	body, err := c.do(ctx, http.MethodGet, "/api/session", "", nil)
	if err != nil {
		return domain.Session{}, err
	}
	if err := validate(sessionSchema, body); err != nil {
		return domain.Session{}, fmt.Errorf("session response: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// CreatePost uploads a finished artifact (PNG still or video) with its
// caption and returns the stable media URL the backend assigned. The blob is
// sent as a multipart file part named "media"; mime is authoritative for the
// server's handling, exactly as File.Type is for selectImage.
func (c *Client) CreatePost(ctx context.Context, blob []byte, mime, caption string) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("create post: empty blob")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("media", mediaFilename(mime))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(blob); err != nil {
		return "", err
	}
	if err := mw.WriteField("mime_type", mime); err != nil {
		return "", err
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	body, err := c.do(ctx, http.MethodPost, "/api/posts", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	if err := validate(postSchema, body); err != nil {
		return "", fmt.Errorf("create post response: %w", err)
	}
	var p domain.Post
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("decode post: %w", err)
	}
	return p.MediaURL, nil
}

// ListPosts returns the caller's published posts, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/posts", "", nil)
	if err != nil {
		return nil, err
	}
	var list []domain.Post
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return list, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	return b, nil
}

func validate(schema string, doc []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return err
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func mediaFilename(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/png"):
		return "still.png"
	case strings.Contains(mime, "mp4"):
		return "reel.mp4"
	case strings.Contains(mime, "webm"):
		return "reel.webm"
	default:
		return "media.bin"
	}
}
