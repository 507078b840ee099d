// Package configs provides the embedded configuration template for codeqa.
//
// The template is embedded at build time using Go's //go:embed directive so
// it is available in every distribution (go install, binary release, or
// package manager), with no separate data file to ship alongside the binary.
//
// config.example.yaml mirrors internal/config.Config field-for-field and is
// written out by `codeqa init` as the starting point for a project's
// .codeqa.yaml. See internal/config/config.go's Default() and Load() for the
// hierarchy this file sits in: hardcoded defaults, then this file's values
// when it is passed to Load (the --config flag), then CODEQA_* environment
// overrides.
package configs

import _ "embed"

// ConfigTemplate is the starting point written by `codeqa init` as a
// project's .codeqa.yaml. Every field is listed with its default value; only
// base_dir is commented out, so a user edits just what they need to change.
//
//go:embed config.example.yaml
var ConfigTemplate string
