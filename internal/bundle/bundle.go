// Package bundle loads, sanitizes filenames for, and merges persisted
// schema JSON files into a validated SchemaPackage (spec.md §6).
package bundle

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/anthropics/cmdschema/internal/schema"
)

var illegalFilenameCharRe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename turns a command (and optional implementation) into a
// safe schema filename: `<sanitized-command>[__<sanitized-implementation>].json`.
// Every character outside [A-Za-z0-9._-] becomes '-', the result is
// trimmed of leading/trailing '-', and an empty result falls back to a
// symbolic alias for brackets or a cmd-<hexbytes> form.
func SanitizeFilename(command, implementation string) string {
	name := sanitizePart(command)
	if implementation != "" {
		name += "__" + sanitizePart(implementation)
	}
	return name + ".json"
}

func sanitizePart(raw string) string {
	replaced := illegalFilenameCharRe.ReplaceAllString(raw, "-")
	trimmed := strings.Trim(replaced, "-")
	if trimmed != "" {
		return trimmed
	}

	switch raw {
	case "[":
		return "lbracket"
	case "]":
		return "rbracket"
	}
	return "cmd-" + hex.EncodeToString([]byte(raw))
}

// CollectSchemaPaths gathers schema JSON file paths from files and/or
// directories, excluding extraction-report.json and non-.json files.
func CollectSchemaPaths(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no schema paths were provided")
	}

	set := map[string]bool{}
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("schema path %q does not exist: %w", input, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(input)
			if err != nil {
				return nil, fmt.Errorf("read dir %q: %w", input, err)
			}
			for _, entry := range entries {
				path := filepath.Join(input, entry.Name())
				if filepath.Ext(path) == ".json" && entry.Name() != "extraction-report.json" {
					set[path] = true
				}
			}
			continue
		}

		if filepath.Ext(input) != ".json" {
			return nil, fmt.Errorf("schema file %q must end in .json", input)
		}
		set[input] = true
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no schema JSON files found in provided paths")
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadAndValidateSchemas reads and structurally validates every schema
// at paths, failing fast on the first invalid file.
func LoadAndValidateSchemas(paths []string) ([]schema.CommandSchema, error) {
	schemas := make([]schema.CommandSchema, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema file %q: %w", path, err)
		}
		var sch schema.CommandSchema
		if err := json.Unmarshal(raw, &sch); err != nil {
			return nil, fmt.Errorf("parse schema file %q: %w", path, err)
		}
		if errs := schema.ValidateSchema(sch); len(errs) > 0 {
			return nil, fmt.Errorf("schema validation failed for %q: %s", path, errs[0].Error())
		}
		schemas = append(schemas, sch)
	}
	return schemas, nil
}

// BundleSchemaFiles loads, validates, and merges schema files at paths
// into a single validated SchemaPackage.
func BundleSchemaFiles(paths []string, version, name, description, generatedAt string) (schema.SchemaPackage, error) {
	schemas, err := LoadAndValidateSchemas(paths)
	if err != nil {
		return schema.SchemaPackage{}, err
	}

	pkg := schema.NewPackage(version, generatedAt)
	pkg.Name = name
	pkg.Description = description
	pkg.Schemas = schemas

	if errs := schema.ValidatePackage(pkg); len(errs) > 0 {
		return schema.SchemaPackage{}, fmt.Errorf("schema package validation failed: %s", errs[0].Error())
	}

	return pkg, nil
}
