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

package template

// Intrinsic functions are represented in their JSON object form so they
// serialize unchanged and compare with reflect.DeepEqual.

// Ref returns {"Ref": name}.
func Ref(name string) map[string]any {
	return map[string]any{"Ref": name}
}

// GetAtt returns {"Fn::GetAtt": [logicalID, attribute]}.
func GetAtt(logicalID, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{logicalID, attribute}}
}

// Join returns {"Fn::Join": [delimiter, parts]}.
func Join(delimiter string, parts ...any) map[string]any {
	return map[string]any{"Fn::Join": []any{delimiter, parts}}
}

// Sub returns {"Fn::Sub": format}.
func Sub(format string) map[string]any {
	return map[string]any{"Fn::Sub": format}
}

// RefName returns the referenced name if v is a Ref expression.
func RefName(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	name, ok := m["Ref"].(string)
	return name, ok
}

// Parameters every deployment root stack declares for locating its assets.
const (
	ParamDeploymentBucket  = "S3DeploymentBucket"
	ParamDeploymentRootKey = "S3DeploymentRootKey"
)

// StacksDir is the bundle directory nested stack templates are uploaded under.
const StacksDir = "stacks"

// StackTemplateURL returns the TemplateURL of a nested stack whose template
// is uploaded as stacks/<fileName> under the deployment bucket and root key.
func StackTemplateURL(fileName string) map[string]any {
	return Join("/",
		"https://s3.amazonaws.com",
		Ref(ParamDeploymentBucket),
		Ref(ParamDeploymentRootKey),
		StacksDir,
		fileName,
	)
}
