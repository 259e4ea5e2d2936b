// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package directive

import (
	"fmt"
	"path"
	"strings"
)

const anySuffix = "**"

type selector struct {
	segs []string
	tail bool
}

func compileSelector(pattern string) (*selector, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("selector cannot be empty")
	}
	segs := strings.Split(pattern, ".")
	s := &selector{}
	for i, seg := range segs {
		if seg == anySuffix {
			if i != len(segs)-1 {
				return nil, fmt.Errorf("selector %q: %s is only allowed as the last segment", pattern, anySuffix)
			}
			s.tail = true
			break
		}
		if seg == "" {
			return nil, fmt.Errorf("selector %q has an empty segment", pattern)
		}
		if _, err := path.Match(seg, ""); err != nil {
			return nil, fmt.Errorf("selector %q: %w", pattern, err)
		}
		s.segs = append(s.segs, seg)
	}
	return s, nil
}

func (s *selector) match(address string) bool {
	parts := strings.Split(address, ".")
	if s.tail {
		if len(parts) < len(s.segs) {
			return false
		}
	} else if len(parts) != len(s.segs) {
		return false
	}
	for i, seg := range s.segs {
		if ok, _ := path.Match(seg, parts[i]); !ok {
			return false
		}
	}
	return true
}

// ValidateSelector reports whether pattern is a well formed tree selector.
func ValidateSelector(pattern string) error {
	_, err := compileSelector(pattern)
	return err
}
