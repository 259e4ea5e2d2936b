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

package bundle

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ChecksumFileName is the standard name for checksum files.
const ChecksumFileName = "checksums.txt"

// GenerateChecksums writes checksums.txt into bundleDir with the SHA256 of
// every file, one "<hex>  <path>" line per file sorted by path. Paths are
// relative to bundleDir and use forward slashes.
func GenerateChecksums(ctx context.Context, bundleDir string, files []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s for checksum: %w", file, err)
		}

		relPath, err := filepath.Rel(bundleDir, file)
		if err != nil {
			relPath = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", digest(data), filepath.ToSlash(relPath)))
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i][66:] < lines[j][66:] })

	checksumPath := ChecksumFilePath(bundleDir)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(checksumPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}

	slog.Debug("checksums generated",
		"file_count", len(lines),
		"path", checksumPath,
	)
	return nil
}

// VerifyChecksums re-reads every file listed in the checksums file of
// bundleDir and fails on the first mismatch.
func VerifyChecksums(ctx context.Context, bundleDir string) error {
	data, err := os.ReadFile(ChecksumFilePath(bundleDir))
	if err != nil {
		return fmt.Errorf("failed to read checksums: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		want, rel, ok := strings.Cut(line, "  ")
		if !ok {
			return fmt.Errorf("malformed checksum line: %q", line)
		}
		content, err := os.ReadFile(filepath.Join(bundleDir, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}
		if got := digest(content); got != want {
			return fmt.Errorf("checksum mismatch for %s: got %s, want %s", rel, got, want)
		}
	}
	return scanner.Err()
}

// ChecksumFilePath returns the full path to the checksums file in bundleDir.
func ChecksumFilePath(bundleDir string) string {
	return filepath.Join(bundleDir, ChecksumFileName)
}

func digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
