/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sutomemo/internal/domain"
)

// Snapshot payloads cross an external boundary (whatever wrote the store
// earlier, possibly an older build), so they are schema-validated on the way
// in. Unknown fields are permitted and ignored; wrong shapes are rejected
// with a ValidationError instead of leaking into the editor model.

// ValidationError reports why a persisted snapshot was rejected.
type ValidationError struct {
	Key    string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("snapshot %s failed validation: %s", e.Key, strings.Join(e.Issues, "; "))
}

const editorStateSchema = `{
  "type": "object",
  "properties": {
    "imageUrl": {"type": "string"},
    "textBoxes": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id":       {"type": "integer"},
          "text":     {"type": "string"},
          "x":        {"type": "number"},
          "y":        {"type": "number"},
          "width":    {"type": "number"},
          "height":   {"type": "number"},
          "fontSize": {"type": "number"}
        },
        "required": ["id"]
      }
    }
  }
}`

const overlayStateSchema = `{
  "type": "object",
  "properties": {
    "text":     {"type": "string"},
    "fontSize": {"type": "number"},
    "textBoxSize": {
      "type": "object",
      "properties": {
        "width":  {"type": "number"},
        "height": {"type": "number"}
      }
    },
    "dragOffset": {
      "type": "object",
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"}
      }
    }
  }
}`

var (
	editorSchemaLoader  = gojsonschema.NewStringLoader(editorStateSchema)
	overlaySchemaLoader = gojsonschema.NewStringLoader(overlayStateSchema)
)

func validate(key string, schema gojsonschema.JSONLoader, raw []byte) error {
	res, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Key: key, Issues: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	issues := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		issues = append(issues, e.String())
	}
	return &ValidationError{Key: key, Issues: issues}
}

// EncodeEditorState serializes a stories editor snapshot.
func EncodeEditorState(s domain.EditorState) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeEditorState validates and parses a stories editor snapshot.
// A blob:-scheme image URL does not survive a reload, so it is purged here;
// the text boxes are still restored.
func DecodeEditorState(raw []byte) (domain.EditorState, error) {
	var s domain.EditorState
	if err := validate(StoriesEditorKey, editorSchemaLoader, raw); err != nil {
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.EditorState{}, fmt.Errorf("parse editor snapshot: %w", err)
	}
	if strings.HasPrefix(s.ImageURL, "blob:") {
		s.ImageURL = ""
	}
	return s, nil
}

// EncodeOverlayState serializes an overlay editor snapshot.
func EncodeOverlayState(s domain.OverlayState) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeOverlayState validates and parses an overlay editor snapshot.
func DecodeOverlayState(key string, raw []byte) (domain.OverlayState, error) {
	var s domain.OverlayState
	if err := validate(key, overlaySchemaLoader, raw); err != nil {
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.OverlayState{}, fmt.Errorf("parse overlay snapshot: %w", err)
	}
	return s, nil
}
