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

package stack

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/NVIDIA/gqlstack/pkg/construct"
	"github.com/NVIDIA/gqlstack/pkg/override"
	"github.com/NVIDIA/gqlstack/pkg/serializer"
	"github.com/NVIDIA/gqlstack/pkg/synth"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

const (
	// DefaultRootStackName is the id of the composition root.
	DefaultRootStackName = "transformer-root-stack"

	// DefaultDescription is set on every synthesized template.
	DefaultDescription = "An auto-generated nested stack."
)

// Parameters owned by the root stack.
const (
	ParamEnv                   = "env"
	ParamAPIName               = "AppSyncApiName"
	ParamAuthRoleName          = "authRoleName"
	ParamUnauthRoleName        = "unauthRoleName"
	ParamAuthCognitoUserPoolID = "AuthCognitoUserPoolId"
)

// AuthConfig selects the auth related parameters of the root stack.
type AuthConfig struct {
	// IAM adds the authenticated and unauthenticated role name parameters.
	IAM bool
	// UserPool adds the Cognito user pool id parameter.
	UserPool bool
}

// Manager owns the composition root of one run and turns it into
// DeploymentResources.
type Manager struct {
	root         *construct.Node
	synthesizer  synth.Synthesizer
	description  string
	auth         AuthConfig
	apiName      string
	envName      string
	parameters   map[string]map[string]template.Parameter
	outputs      map[string]map[string]*template.Output
	assets       map[string]string
	stackMapping map[string]string
	log          *slog.Logger
	overrideDiff string
}

// Option is a functional option for configuring Manager instances.
type Option func(*managerOptions)

type managerOptions struct {
	rootName     string
	synthesizer  synth.Synthesizer
	description  string
	auth         AuthConfig
	apiName      string
	envName      string
	stackMapping map[string]string
	log          *slog.Logger
}

// WithRootStackName sets the id of the composition root.
func WithRootStackName(name string) Option {
	return func(o *managerOptions) {
		if name != "" {
			o.rootName = name
		}
	}
}

// WithSynthesizer replaces the reference synthesizer.
func WithSynthesizer(s synth.Synthesizer) Option {
	return func(o *managerOptions) {
		if s != nil {
			o.synthesizer = s
		}
	}
}

// WithDescription sets the description of every synthesized template.
func WithDescription(d string) Option {
	return func(o *managerOptions) {
		o.description = d
	}
}

// WithAuthConfig selects the auth parameters of the root stack.
func WithAuthConfig(a AuthConfig) Option {
	return func(o *managerOptions) {
		o.auth = a
	}
}

// WithAPIName sets the default of the AppSyncApiName parameter.
func WithAPIName(name string) Option {
	return func(o *managerOptions) {
		o.apiName = name
	}
}

// WithEnvName sets the default of the env parameter.
func WithEnvName(name string) Option {
	return func(o *managerOptions) {
		if name != "" {
			o.envName = name
		}
	}
}

// WithStackMapping sets the persisted resource to stack assignments the
// transform phases consult through StackFor.
func WithStackMapping(m map[string]string) Option {
	return func(o *managerOptions) {
		o.stackMapping = cloneStrings(m)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *managerOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewManager creates a Manager with the root stack parameters in place.
func NewManager(opts ...Option) *Manager {
	o := &managerOptions{
		rootName:     DefaultRootStackName,
		synthesizer:  synth.Default{},
		description:  DefaultDescription,
		apiName:      "AppSyncSimpleTransform",
		envName:      "NONE",
		stackMapping: map[string]string{},
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Manager{
		root:         construct.NewScope(o.rootName),
		synthesizer:  o.synthesizer,
		description:  o.description,
		auth:         o.auth,
		apiName:      o.apiName,
		envName:      o.envName,
		parameters:   make(map[string]map[string]template.Parameter),
		outputs:      make(map[string]map[string]*template.Output),
		assets:       make(map[string]string),
		stackMapping: o.stackMapping,
		log:          o.log,
	}
	m.addAuthParameters()
	return m
}

func (m *Manager) addAuthParameters() {
	root := m.root.ID()
	m.setParameter(root, ParamEnv, template.Parameter{
		Type:        "String",
		Default:     m.envName,
		Description: "The environment name, e.g. Dev, Test, or Production.",
	})
	m.setParameter(root, ParamAPIName, template.Parameter{
		Type:        "String",
		Default:     m.apiName,
		Description: "The name of the AppSync API.",
	})
	m.setParameter(root, template.ParamDeploymentBucket, template.Parameter{
		Type:        "String",
		Description: "An S3 Bucket name where assets are deployed.",
	})
	m.setParameter(root, template.ParamDeploymentRootKey, template.Parameter{
		Type:        "String",
		Description: "An S3 key relative to the S3DeploymentBucket that points to the root of the deployment directory.",
	})
	if m.auth.IAM {
		m.setParameter(root, ParamAuthRoleName, template.Parameter{Type: "String"})
		m.setParameter(root, ParamUnauthRoleName, template.Parameter{Type: "String"})
	}
	if m.auth.UserPool {
		m.setParameter(root, ParamAuthCognitoUserPoolID, template.Parameter{
			Type:        "String",
			Description: "The id of an existing User Pool to connect.",
		})
	}
}

// Root returns the composition root.
func (m *Manager) Root() *construct.Node {
	return m.root
}

// CreateStack creates a nested stack directly under the root.
func (m *Manager) CreateStack(name string) (*construct.Node, error) {
	s, err := m.root.AddNestedStack(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create stack %s: %w", name, err)
	}
	return s, nil
}

// GetStack returns the nested stack with the given name.
func (m *Manager) GetStack(name string) (*construct.Node, bool) {
	n, ok := m.root.Child(name)
	if !ok || !n.IsStack() {
		return nil, false
	}
	return n, true
}

// StackFor returns the stack a resource was assigned to on a previous run,
// or defaultStack when it was never assigned.
func (m *Manager) StackFor(logicalID, defaultStack string) string {
	if s, ok := m.stackMapping[logicalID]; ok {
		return s
	}
	return defaultStack
}

// AddParameter declares a parameter on the stack with the given id.
func (m *Manager) AddParameter(stackID, name string, p template.Parameter) error {
	if _, exists := m.parameters[stackID][name]; exists {
		return fmt.Errorf("stack %s already declares parameter %s", stackID, name)
	}
	m.setParameter(stackID, name, p)
	return nil
}

// Parameter returns a parameter declared on the stack with the given id.
func (m *Manager) Parameter(stackID, name string) (template.Parameter, bool) {
	p, ok := m.parameters[stackID][name]
	return p, ok
}

func (m *Manager) setParameter(stackID, name string, p template.Parameter) {
	if m.parameters[stackID] == nil {
		m.parameters[stackID] = make(map[string]template.Parameter)
	}
	m.parameters[stackID][name] = p
}

// AddOutput declares an output on the stack with the given id.
func (m *Manager) AddOutput(stackID, name string, o *template.Output) {
	if m.outputs[stackID] == nil {
		m.outputs[stackID] = make(map[string]*template.Output)
	}
	m.outputs[stackID][name] = o
}

// AddAsset registers a text asset. Names follow the bundle layout: the
// schema asset, or a name under the resolvers/, pipelineFunctions/ or
// functions/ prefix.
func (m *Manager) AddAsset(name, content string) error {
	if name == "" {
		return fmt.Errorf("asset name cannot be empty")
	}
	if _, exists := m.assets[name]; exists {
		return fmt.Errorf("asset %s already exists", name)
	}
	m.assets[name] = content
	return nil
}

// OverrideDiff returns the unified diff of the templates before and after the
// last override run, or "" when no override changed anything.
func (m *Manager) OverrideDiff() string {
	return m.overrideDiff
}

// Synthesize renders the root into DeploymentResources. When cfg is enabled
// its override runs to completion before the final synthesis so that its
// edits appear in the output. Override errors are returned unchanged.
func (m *Manager) Synthesize(ctx context.Context, cfg *override.Config) (*DeploymentResources, error) {
	start := time.Now()
	defer func() {
		synthesisDuration.Observe(time.Since(start).Seconds())
	}()

	var before map[string]*template.Template
	if cfg != nil && cfg.Enabled && cfg.Apply != nil {
		var err error
		if before, err = m.synthesize(ctx); err != nil {
			return nil, err
		}
		if _, err := cfg.Apply(ctx, m.root); err != nil {
			return nil, err
		}
	}

	templates, err := m.synthesize(ctx)
	if err != nil {
		return nil, err
	}
	if before != nil {
		m.overrideDiff = diffTemplates(before, templates, m.log)
		if m.overrideDiff != "" {
			m.log.Debug("override changed templates", "diff", m.overrideDiff)
		}
	}

	out := m.assemble(templates)
	synthesizedStacks.Set(float64(len(out.Stacks)))
	m.log.Info("stacks synthesized",
		"stacks", len(out.Stacks),
		"resolvers", len(out.Resolvers),
		"functions", len(out.Functions),
		"duration", time.Since(start))
	return out, nil
}

func (m *Manager) synthesize(ctx context.Context) (map[string]*template.Template, error) {
	templates, err := m.synthesizer.Synthesize(ctx, synth.Input{
		Root:        m.root,
		Parameters:  m.parameters,
		Outputs:     m.outputs,
		Description: m.description,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}
	return templates, nil
}

// assemble partitions templates and assets into DeploymentResources.
func (m *Manager) assemble(templates map[string]*template.Template) *DeploymentResources {
	out := NewDeploymentResources()
	for name, t := range templates {
		if name == m.root.ID() {
			out.RootStack = t
			continue
		}
		out.Stacks[name] = t
	}

	for name, content := range m.assets {
		switch {
		case name == SchemaAsset:
			out.Schema = content
		case strings.HasPrefix(name, ResolversPrefix):
			out.Resolvers[strings.TrimPrefix(name, ResolversPrefix)] = content
		case strings.HasPrefix(name, PipelineFunctionsPrefix):
			out.PipelineFunctions[strings.TrimPrefix(name, PipelineFunctionsPrefix)] = content
		case strings.HasPrefix(name, FunctionsPrefix):
			out.Functions[strings.TrimPrefix(name, FunctionsPrefix)] = content
		default:
			m.log.Warn("skipping asset outside the bundle layout", "name", name)
		}
	}
	out.StackMapping = cloneStrings(m.stackMapping)
	return out
}

func diffTemplates(before, after map[string]*template.Template, log *slog.Logger) string {
	names := make([]string, 0, len(after))
	for name := range after {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		a, err := serializer.Marshal(serializer.FormatJSON, before[name])
		if err != nil {
			log.Debug("skipping template in override diff", "stack", name, "error", err)
			continue
		}
		z, err := serializer.Marshal(serializer.FormatJSON, after[name])
		if err != nil {
			log.Debug("skipping template in override diff", "stack", name, "error", err)
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(a)),
			B:        difflib.SplitLines(string(z)),
			FromFile: name + " (generated)",
			ToFile:   name + " (overridden)",
			Context:  3,
		})
		if err != nil {
			log.Debug("skipping template in override diff", "stack", name, "error", err)
			continue
		}
		b.WriteString(text)
	}
	return b.String()
}
