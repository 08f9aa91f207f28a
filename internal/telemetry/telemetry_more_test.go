/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// Opted-out users must generate zero network traffic, even for the
// well-known composer events and crash reports.
func TestOptedOutClientSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("opted-out client must report disabled")
	}
	c.Event("editor.export", map[string]any{"bytes": 12345})
	c.Event("reel.render", map[string]any{"mime": "video/mp4"})
	c.Event("post.create", nil)
	c.UploadCrash([]byte("SutoMemo Crash Report"))
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("opted-out client hit the endpoint %d time(s)", atomic.LoadInt32(&hits))
	}
}

// Opt-in without a configured endpoint is still a no-op; a nameless event is
// dropped outright.
func TestEventDroppedWithoutEndpointOrName(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	noURL := New(Config{OptIn: true, Timeout: time.Second})
	defer noURL.Close()
	if noURL.Enabled() {
		t.Fatalf("client without an events URL must report disabled")
	}
	noURL.Event("editor.export", nil)

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	defer c.Close()
	c.Event("", map[string]any{"bytes": 1})
	c.Flush(nil)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("nameless or endpointless events must never be posted")
	}
}
