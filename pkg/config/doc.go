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

// Package config holds the settings of a compile run and the persisted
// transform.conf.json project configuration.
//
// Run settings are built with functional options and read through getters:
//
//	cfg := config.NewConfig(
//	    config.WithAPIDir("amplify/backend/api/todo"),
//	    config.WithProject("dev", "todo"),
//	)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// The project configuration is read and written through a Store. FileStore
// keeps it next to the schema and preserves keys it does not model.
package config
