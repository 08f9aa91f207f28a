/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSessionGuestWithoutToken(t *testing.T) {
	c := NewClient("http://unreachable.invalid", "")
	s, err := c.Session(context.Background())
	if err != nil {
		t.Fatalf("guest session must not hit the network: %v", err)
	}
	if !s.Guest || s.UserID != "" {
		t.Fatalf("session = %+v, want anonymous guest", s)
	}
}

func TestSessionWithToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/session" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u-7","guest":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok123")
	s, err := c.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if s.UserID != "u-7" || s.Guest {
		t.Fatalf("session = %+v", s)
	}
}

func TestSessionRejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user_id": 42}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	if _, err := c.Session(context.Background()); err == nil {
		t.Fatalf("expected schema violation error")
	}
}

func TestCreatePostUploadsMultipart(t *testing.T) {
	blob := []byte("\x89PNG\r\n\x1a\nfakepixels")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/posts" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("mime_type"); got != "image/png" {
			t.Errorf("mime_type = %q", got)
		}
		if got := r.FormValue("caption"); got != "morning memo" {
			t.Errorf("caption = %q", got)
		}
		f, _, err := r.FormFile("media")
		if err != nil {
			t.Fatalf("media part: %v", err)
		}
		b, _ := io.ReadAll(f)
		if string(b) != string(blob) {
			t.Errorf("media bytes mismatch")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"caption":"morning memo","media_url":"/media/1.png","mime_type":"image/png"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	url, err := c.CreatePost(context.Background(), blob, "image/png", "morning memo")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if url != "/media/1.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestCreatePostRejectsEmptyBlob(t *testing.T) {
	c := NewClient("http://unreachable.invalid", "tok")
	if _, err := c.CreatePost(context.Background(), nil, "image/png", ""); err == nil {
		t.Fatalf("empty blob must be rejected before upload")
	}
}

func TestCreatePostSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid token"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale")
	_, err := c.CreatePost(context.Background(), []byte("x"), "image/png", "")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want 401 status error", err)
	}
}

func TestCreatePostHonorsContextCancel(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the upload before stalling so the server can wind down once
		// the request is gone.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	c := NewClient(srv.URL, "tok")
	if _, err := c.CreatePost(ctx, []byte("x"), "image/png", ""); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestTokenSignVerifyRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	sub, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q", sub)
	}
	if _, err := verifyToken("wrong", tok); err == nil {
		t.Fatalf("wrong secret must fail verification")
	}
}

func TestTokenExpiry(t *testing.T) {
	tok, err := signToken("s3cret", "bob", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	if _, err := verifyToken("s3cret", tok); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestExtForMime(t *testing.T) {
	cases := map[string]string{
		"image/png":             ".png",
		"video/mp4":             ".mp4",
		"video/webm;codecs=vp9": ".webm",
		"application/x-unknown": ".bin",
	}
	for mt, want := range cases {
		if got := extForMime(mt); got != want {
			t.Fatalf("extForMime(%q) = %q, want %q", mt, got, want)
		}
	}
}
