// Package serializer reads and writes the structured documents the compiler
// exchanges with disk: CloudFormation templates, the project transform config
// and override manifests.
//
// Supported formats are JSON (goccy/go-json, indented, HTML escaping off) and
// YAML (gopkg.in/yaml.v3). The format of a file is derived from its extension.
//
// Usage:
//
//	tmpl, err := serializer.FromFile[template.Template]("stacks/Todo.json")
//	if err != nil {
//		return err
//	}
//	if err := serializer.WriteFile("out/stacks/Todo.json", tmpl); err != nil {
//		return err
//	}
//
// WriteFile replaces files atomically so readers never observe partial content.
package serializer
