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
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"
)

// Variables available to manifest expressions.
const (
	varResource = "resource"
	varProject  = "project"
)

// newEnvironment returns the CEL environment manifest expressions compile in.
func newEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Lists(),
		ext.Strings(),
		cel.OptionalTypes(),
		cel.Variable(varResource, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(varProject, cel.MapType(cel.StringType, cel.DynType)),
	)
}

// compile checks expr and returns a program for it.
func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error in %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error in %q: %w", expr, err)
	}
	return prg, nil
}

func eval(prg cel.Program, vars map[string]any) (any, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, err
	}
	return nativeValue(out)
}

func evalBool(prg cel.Program, vars map[string]any) (bool, error) {
	v, err := eval(prg, vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, want bool", v)
	}
	return b, nil
}

// nativeValue converts a CEL result into the plain Go values templates hold.
func nativeValue(v ref.Val) (any, error) {
	switch v.Type() {
	case types.BoolType, types.IntType, types.UintType, types.DoubleType, types.StringType, types.BytesType:
		return v.Value(), nil
	case types.NullType:
		return nil, nil
	case types.OptionalType:
		opt, ok := v.(*types.Optional)
		if !ok || !opt.HasValue() {
			return nil, nil
		}
		return nativeValue(opt.GetValue())
	case types.ListType:
		lister, ok := v.(traits.Lister)
		if !ok {
			return v.ConvertToNative(reflect.TypeOf([]any{}))
		}
		out := []any{}
		for it := lister.Iterator(); it.HasNext() == types.True; {
			item, err := nativeValue(it.Next())
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case types.MapType:
		mapper, ok := v.(traits.Mapper)
		if !ok {
			return v.ConvertToNative(reflect.TypeOf(map[string]any{}))
		}
		out := make(map[string]any)
		for it := mapper.Iterator(); it.HasNext() == types.True; {
			key := it.Next()
			k, ok := key.Value().(string)
			if !ok {
				return nil, fmt.Errorf("map key must be a string, got %v", key.Type())
			}
			item, err := nativeValue(mapper.Get(key))
			if err != nil {
				return nil, err
			}
			out[k] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported expression result type %v", v.Type())
	}
}
