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

// Kind is the resource kind discriminant the tree builder switches on.
type Kind string

const (
	KindResolver              Kind = "Resolver"
	KindFunctionConfiguration Kind = "FunctionConfiguration"
	KindDataSource            Kind = "DataSource"
	KindRole                  Kind = "Role"
	KindPolicy                Kind = "Policy"
	KindTable                 Kind = "Table"
	KindLambdaFunction        Kind = "LambdaFunction"
	KindEventSourceMapping    Kind = "EventSourceMapping"
	KindStack                 Kind = "Stack"
	KindGraphQLAPI            Kind = "GraphQLAPI"
	KindGraphQLSchema         Kind = "GraphQLSchema"
	KindAPIKey                Kind = "ApiKey"
	KindDomain                Kind = "Domain"
	KindOther                 Kind = "Other"
)

// resourceKinds is the finite set of CloudFormation types the transform emits.
// Anything else is KindOther.
var resourceKinds = map[string]Kind{
	"AWS::AppSync::Resolver":              KindResolver,
	"AWS::AppSync::FunctionConfiguration": KindFunctionConfiguration,
	"AWS::AppSync::DataSource":            KindDataSource,
	"AWS::AppSync::GraphQLApi":            KindGraphQLAPI,
	"AWS::AppSync::GraphQLSchema":         KindGraphQLSchema,
	"AWS::AppSync::ApiKey":                KindAPIKey,
	"AWS::IAM::Role":                      KindRole,
	"AWS::IAM::Policy":                    KindPolicy,
	"AWS::IAM::ManagedPolicy":             KindPolicy,
	"AWS::DynamoDB::Table":                KindTable,
	"AWS::DynamoDB::GlobalTable":          KindTable,
	"AWS::Lambda::Function":               KindLambdaFunction,
	"AWS::Lambda::EventSourceMapping":     KindEventSourceMapping,
	"AWS::CloudFormation::Stack":          KindStack,
	"AWS::Elasticsearch::Domain":          KindDomain,
	"AWS::OpenSearchService::Domain":      KindDomain,
}

// KindOf returns the kind of a CloudFormation resource type.
func KindOf(resourceType string) Kind {
	if k, ok := resourceKinds[resourceType]; ok {
		return k
	}
	return KindOther
}
