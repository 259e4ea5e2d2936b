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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/content/oci"

	"github.com/NVIDIA/gqlstack/pkg/bundle"
	"github.com/NVIDIA/gqlstack/pkg/errors"
)

// ArtifactType is the media type of packaged deployment bundles.
const ArtifactType = "application/vnd.nvidia.gqlstack.bundle"

// PackageOptions configures Package.
type PackageOptions struct {
	// SourceDir is the written bundle.
	SourceDir string
	// StoreDir receives the OCI image layout. It must not be inside SourceDir.
	StoreDir string
	// Reference names the artifact. Its tag is required.
	Reference *Reference
	// Version is recorded in the org.opencontainers.image.version annotation.
	Version string
	// ReproducibleTimestamp sets a fixed org.opencontainers.image.created.
	ReproducibleTimestamp string
}

// PackageResult describes a packaged bundle.
type PackageResult struct {
	// Digest is the manifest digest.
	Digest string
	// Reference is the image reference the manifest is tagged with.
	Reference string
	// StorePath is the OCI image layout directory.
	StorePath string
}

// Package packs the bundle in SourceDir as a single gzip layer artifact and
// copies it into the OCI image layout at StoreDir, tagged with the reference
// tag. When the bundle has a checksums file it is verified first.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	if opts.Reference == nil || opts.Reference.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}

	srcDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve source directory", err)
	}
	storeDir, err := filepath.Abs(opts.StoreDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve store directory", err)
	}
	if rel, relErr := filepath.Rel(srcDir, storeDir); relErr == nil && !strings.HasPrefix(rel, "..") {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "OCI store directory must be outside the bundle directory")
	}
	if info, statErr := os.Stat(srcDir); statErr != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("bundle directory %s does not exist", opts.SourceDir))
	}

	if _, statErr := os.Stat(bundle.ChecksumFilePath(srcDir)); statErr == nil {
		if verr := bundle.VerifyChecksums(ctx, srcDir); verr != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "bundle failed checksum verification", verr)
		}
	}

	fs, err := file.New(srcDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layerDesc, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, srcDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to add bundle to store", err)
	}

	annotations := map[string]string{
		ociv1.AnnotationTitle:  "GraphQL API deployment bundle",
		ociv1.AnnotationVendor: "NVIDIA",
	}
	if opts.Version != "" {
		annotations[ociv1.AnnotationVersion] = opts.Version
	}
	if opts.ReproducibleTimestamp != "" {
		annotations[ociv1.AnnotationCreated] = opts.ReproducibleTimestamp
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layerDesc},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to pack manifest", err)
	}

	tag := opts.Reference.Tag
	if err := fs.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to tag manifest", err)
	}

	store, err := oci.New(storeDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create OCI layout", err)
	}
	desc, err := oras.Copy(ctx, fs, tag, store, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to copy artifact into OCI layout", err)
	}

	slog.Debug("bundle packaged",
		"reference", opts.Reference.ImageReference(),
		"digest", desc.Digest.String(),
		"store", storeDir,
	)
	return &PackageResult{
		Digest:    desc.Digest.String(),
		Reference: opts.Reference.ImageReference(),
		StorePath: storeDir,
	}, nil
}
