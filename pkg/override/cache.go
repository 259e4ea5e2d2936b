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

package override

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// defaultCache is shared by every executor in the process.
var defaultCache = newArtifactCache()

// artifactCache holds the override artifacts loaded in this process, keyed by
// path and content digest. An entry whose file content changed is dropped, so
// a recompiled artifact is always loaded again.
type artifactCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	digest string
	fn     Func
}

func newArtifactCache() *artifactCache {
	return &artifactCache{entries: make(map[string]cacheEntry)}
}

// get returns the override loaded from path when its content still matches
// digest. A stale entry is invalidated.
func (c *artifactCache) get(path, digest string) (Func, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if e.digest != digest {
		delete(c.entries, path)
		overrideCacheInvalidations.Inc()
		return nil, false
	}
	overrideCacheHits.Inc()
	return e.fn, true
}

func (c *artifactCache) put(path, digest string, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{digest: digest, fn: fn}
}

func (c *artifactCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func contentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
