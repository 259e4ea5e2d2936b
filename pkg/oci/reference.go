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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/NVIDIA/gqlstack/pkg/errors"
)

// URIScheme prefixes OCI targets given on the command line,
// e.g. "oci://ghcr.io/org/todo-api:v1".
const URIScheme = "oci://"

// Reference names a packaged bundle.
type Reference struct {
	// Registry is the registry host, e.g. "ghcr.io" or "localhost:5000".
	Registry string
	// Repository is the repository path, e.g. "org/todo-api".
	Repository string
	// Tag is empty when none was given; callers apply a default.
	Tag string
}

// ParseReference parses an image reference with or without the oci://
// scheme. Short names are normalized the way docker does, so "todo" becomes
// docker.io/library/todo.
func ParseReference(target string) (*Reference, error) {
	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "OCI reference must not contain a digest")
	}

	r := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		r.Tag = tagged.Tag()
	}
	return r, nil
}

// ValidateRegistryReference checks that registry and repository form a valid
// image name.
func ValidateRegistryReference(registry, repository string) error {
	if registry == "" || repository == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "registry and repository are required")
	}
	name := fmt.Sprintf("%s/%s", stripProtocol(registry), repository)
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid OCI reference %q", name), err)
	}
	return nil
}

// String returns the reference with the oci:// scheme.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns the docker style reference without scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with the given tag.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

// stripProtocol removes an http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	return strings.TrimPrefix(registry, "http://")
}
