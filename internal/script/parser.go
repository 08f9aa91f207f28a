/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Parse parses a .memo script into a MemoScript.
// Supported syntax (minimal):
//
//   - Field lines: "caption: text", "why:", "what:", "next:" (memo card),
//     "hook:", "problem:", "evidence:", "action:" (reel slots), "style:"
//     (named preset for the still's boxes). Field names are
//     case-insensitive.
//
//   - Continuation lines indented by 2+ spaces are appended to the previous
//     field with a newline.
//
//   - Box lines: "box: X,Y text" place a text box on the still at display
//     coordinates X,Y.
//
//   - Notes: lines starting with ';' are ignored.
//
// Blank lines are separators. Unknown lines are reported as errors with
// their line number; parsing continues.
func Parse(input string) (MemoScript, []Error) {
	var ms MemoScript
	var errs []Error

	reField := regexp.MustCompile(`^(?i)(caption|style|why|what|next|hook|problem|evidence|action)\s*:\s*(.*)$`)
	reBox := regexp.MustCompile(`^(?i)box\s*:\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s+(.+)$`)

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	var last *string

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Continuation line (indented) -> append to the previous field
		if strings.HasPrefix(line, "  ") && last != nil {
			if cont := strings.TrimSpace(line); cont != "" {
				*last += "\n" + cont
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			last = nil
			continue
		}
		if strings.HasPrefix(trim, ";") {
			last = nil
			continue
		}

		if m := reBox.FindStringSubmatch(trim); m != nil {
			x, _ := strconv.ParseFloat(m[1], 64)
			y, _ := strconv.ParseFloat(m[2], 64)
			ms.Boxes = append(ms.Boxes, BoxLine{X: x, Y: y, Text: strings.TrimSpace(m[3]), LineNo: lineNo})
			last = &ms.Boxes[len(ms.Boxes)-1].Text
			continue
		}

		if m := reField.FindStringSubmatch(trim); m != nil {
			text := strings.TrimSpace(m[2])
			var dst *string
			switch strings.ToLower(m[1]) {
			case "caption":
				dst = &ms.Caption
			case "style":
				dst = &ms.Style
			case "why":
				dst = &ms.Memo.Why
			case "what":
				dst = &ms.Memo.What
			case "next":
				dst = &ms.Memo.Next
			case "hook":
				dst = &ms.Reel.Hook
			case "problem":
				dst = &ms.Reel.Problem
			case "evidence":
				dst = &ms.Reel.Evidence
			case "action":
				dst = &ms.Reel.Action
			}
			*dst = text
			last = dst
			continue
		}

		errs = append(errs, Error{Line: lineNo, Message: "unrecognized line: " + trim})
		last = nil
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return ms, errs
}
