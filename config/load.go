// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/terramate-io/hcl/v2/hclparse"
	"github.com/terramate-io/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	// ErrHCLSyntax indicates the HCL registration file has syntax errors.
	ErrHCLSyntax errors.Kind = "HCL syntax error"

	// ErrInvalidAttributeType indicates the attribute has an invalid type.
	ErrInvalidAttributeType errors.Kind = "attribute with invalid type"

	// ErrUnrecognizedAttribute indicates the attribute is unrecognized.
	ErrUnrecognizedAttribute errors.Kind = "unrecognized attribute"

	// ErrUnrecognizedBlock indicates the block is unrecognized.
	ErrUnrecognizedBlock errors.Kind = "unrecognized block"

	// ErrUnsupportedFormat indicates the file extension is not supported.
	ErrUnsupportedFormat errors.Kind = "unsupported registration file format"

	// ErrDecode indicates a YAML, TOML or JSON decoding failure.
	ErrDecode errors.Kind = "decoding registration"
)

// LoadFrom loads and validates the registration file fname.
// A leading ~ in the binary and var files is expanded to the home directory.
// The format is selected by the file extension: .hcl, .yaml/.yml, .toml or .json.
func LoadFrom(fname string) (Registration, error) {
	logger := log.With().
		Str("action", "config.LoadFrom()").
		Str("file", fname).
		Logger()

	content, err := os.ReadFile(fname)
	if err != nil {
		return Registration{}, errors.E(err, "reading registration file")
	}

	logger.Trace().Msg("parsing registration")

	reg, err := Parse(content, fname)
	if err != nil {
		return Registration{}, err
	}
	if err := reg.ExpandHome(); err != nil {
		return Registration{}, err
	}
	if err := reg.Validate(); err != nil {
		return Registration{}, err
	}

	logger.Debug().
		Str("binary", reg.Binary()).
		Bool("auto_approve", reg.AutoApprove).
		Msg("registration loaded")

	return reg, nil
}

// Parse parses content according to the extension of fname.
// The registration is not validated.
func Parse(content []byte, fname string) (Registration, error) {
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".hcl":
		return parseHCL(content, fname)
	case ".yaml", ".yml":
		var reg Registration
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&reg); err != nil {
			return Registration{}, errors.E(ErrDecode, err, "parsing %s", fname)
		}
		return reg, nil
	case ".toml":
		var reg Registration
		dec := toml.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&reg); err != nil {
			return Registration{}, errors.E(ErrDecode, err, "parsing %s", fname)
		}
		return reg, nil
	case ".json":
		var reg Registration
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&reg); err != nil {
			return Registration{}, errors.E(ErrDecode, err, "parsing %s", fname)
		}
		return reg, nil
	default:
		return Registration{}, errors.E(ErrUnsupportedFormat, "%q (%s)", ext, fname)
	}
}

func parseHCL(content []byte, fname string) (Registration, error) {
	parser := hclparse.NewParser()
	hclfile, diags := parser.ParseHCL(content, fname)
	if diags.HasErrors() {
		return Registration{}, errors.E(ErrHCLSyntax, diags, "failed to parse %s", fname)
	}

	var reg Registration
	body := hclfile.Body.(*hclsyntax.Body)

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		attr := body.Attributes[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return Registration{}, errors.E(diags, `failed to evaluate the %q attribute`, name)
		}
		var err error
		switch name {
		case "base_location":
			reg.BaseLocation, err = stringValue(name, val)
		case "binary":
			reg.BinaryPath, err = stringValue(name, val)
		case "workspace":
			reg.Workspace, err = stringValue(name, val)
		case "required_version":
			reg.RequiredVersion, err = stringValue(name, val)
		case "required_version_allow_prereleases":
			reg.AllowPrereleases, err = boolValue(name, val)
		case "auto_approve":
			reg.AutoApprove, err = boolValue(name, val)
		case "run_init":
			var runInit bool
			runInit, err = boolValue(name, val)
			reg.RunInit = &runInit
		case "var_files":
			reg.VarFiles, err = stringList(name, val)
		case "env":
			reg.EnvVars, err = stringMap(name, val)
		default:
			err = errors.E(ErrUnrecognizedAttribute, "%s: %s", attr.NameRange.String(), name)
		}
		if err != nil {
			return Registration{}, err
		}
	}

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return Registration{}, errors.E(ErrUnrecognizedBlock,
				"%s: block %q does not accept labels", block.TypeRange.String(), block.Type)
		}
		attrs, err := blockStrings(block)
		if err != nil {
			return Registration{}, err
		}
		switch block.Type {
		case "arg":
			flag, ok := attrs["flag"]
			if !ok {
				return Registration{}, errors.E(ErrSchema, "%s: arg block requires a flag attribute", block.TypeRange.String())
			}
			arg := Arg{Flag: *flag}
			if v, ok := attrs["value"]; ok {
				arg.Value = v
			}
			reg.Args = append(reg.Args, arg)
		case "var":
			name, ok := attrs["name"]
			if !ok {
				return Registration{}, errors.E(ErrSchema, "%s: var block requires a name attribute", block.TypeRange.String())
			}
			v := Var{Name: *name}
			if val, ok := attrs["value"]; ok {
				v.Value = val
			}
			reg.Vars = append(reg.Vars, v)
		default:
			return Registration{}, errors.E(ErrUnrecognizedBlock, "%s: %s", block.TypeRange.String(), block.Type)
		}
	}

	return reg, nil
}

// blockStrings evaluates the attributes of an arg/var block. Only "flag",
// "name" and "value" are accepted.
func blockStrings(block *hclsyntax.Block) (map[string]*string, error) {
	res := map[string]*string{}
	for name, attr := range block.Body.Attributes {
		switch name {
		case "flag", "name", "value":
		default:
			return nil, errors.E(ErrUnrecognizedAttribute, "%s: %s.%s", attr.NameRange.String(), block.Type, name)
		}
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.E(diags, `failed to evaluate the "%s.%s" attribute`, block.Type, name)
		}
		str, err := stringValue(block.Type+"."+name, val)
		if err != nil {
			return nil, err
		}
		res[name] = &str
	}
	if len(block.Body.Blocks) > 0 {
		return nil, errors.E(ErrUnrecognizedBlock, "%s: %s blocks do not accept sub blocks", block.TypeRange.String(), block.Type)
	}
	return res, nil
}

func stringValue(name string, val cty.Value) (string, error) {
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return "", errors.E(
			ErrInvalidAttributeType,
			`%q attribute expects a string value but a value of type %s was given`,
			name, val.Type().FriendlyName(),
		)
	}
	return val.AsString(), nil
}

func boolValue(name string, val cty.Value) (bool, error) {
	if val.IsNull() || !val.Type().Equals(cty.Bool) {
		return false, errors.E(
			ErrInvalidAttributeType,
			`%q attribute expects a boolean value but a value of type %s was given`,
			name, val.Type().FriendlyName(),
		)
	}
	return val.True(), nil
}

func stringList(name string, val cty.Value) ([]string, error) {
	typ := val.Type()
	if val.IsNull() || !(typ.IsListType() || typ.IsTupleType()) {
		return nil, errors.E(
			ErrInvalidAttributeType,
			`%q attribute expects a list of strings but a value of type %s was given`,
			name, typ.FriendlyName(),
		)
	}
	var res []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		str, err := stringValue(name+" element", elem)
		if err != nil {
			return nil, err
		}
		res = append(res, str)
	}
	return res, nil
}

func stringMap(name string, val cty.Value) (map[string]string, error) {
	typ := val.Type()
	if val.IsNull() || !(typ.IsObjectType() || typ.IsMapType()) {
		return nil, errors.E(
			ErrInvalidAttributeType,
			`%q attribute expects an object of strings but a value of type %s was given`,
			name, typ.FriendlyName(),
		)
	}
	res := map[string]string{}
	for key, elem := range val.AsValueMap() {
		str, err := stringValue(name+"."+key, elem)
		if err != nil {
			return nil, err
		}
		res[key] = str
	}
	return res, nil
}
