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

// Package version holds the compiler build version and parses the semantic
// versions used to tag packaged bundles.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Build information, overridden with ldflags.
var (
	Current = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Errors returned by ParseVersion.
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
)

// Version is a semantic version with 1 to 3 significant components.
// Anything after a '-' or '+' that follows a digit is kept in Extras.
type Version struct {
	Major int `json:"major,omitempty" yaml:"major,omitempty"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Precision is the number of significant components.
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// String returns the significant components without extras.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Tag returns the version as an OCI tag, e.g. v1.2.3-rc.1. Build metadata
// separators are replaced since '+' is not allowed in tags.
func (v Version) Tag() string {
	return "v" + v.String() + strings.ReplaceAll(v.Extras, "+", "-")
}

// ParseVersion parses "1", "1.2", "1.2.3" with an optional "v" prefix and
// optional "-suffix" or "+metadata".
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	main := s
	for i := 1; i < len(s); i++ {
		if (s[i] == '-' || s[i] == '+') && s[i-1] >= '0' && s[i-1] <= '9' {
			main, v.Extras = s[:i], s[i:]
			break
		}
	}

	parts := strings.Split(main, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}
		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}
	v.Precision = len(parts)
	return v, nil
}

// TagOrDefault returns the OCI tag for s, or fallback when s is not a
// version (e.g. "dev" builds).
func TagOrDefault(s, fallback string) string {
	v, err := ParseVersion(s)
	if err != nil {
		return fallback
	}
	return v.Tag()
}
