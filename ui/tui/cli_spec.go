// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package tui

import "github.com/willabides/kongplete"

// Spec is the tfgoal command line specification.
type Spec struct {
	globalCliFlags

	Execute struct {
		goalCliFlags

		Continuation     string `env:"TFGOAL_CONTINUATION" xor:"continuation" help:"Continuation token returned by a previous invocation."`
		ContinuationFile string `env:"TFGOAL_CONTINUATION_FILE" xor:"continuation" predictor:"file" help:"File holding the continuation token. Written when the goal waits for approval and removed when it finishes."`
	} `cmd:"" help:"Plan the goal, or apply it if it is approved."`

	Destroy struct {
		goalCliFlags
	} `cmd:"" help:"Destroy the infrastructure of the goal."`

	Args struct {
		Config string `env:"TFGOAL_CONFIG" short:"f" required:"" predictor:"file" help:"Goal registration file (.hcl, .yaml, .toml or .json)."`
		AsJSON bool   `help:"Print the arguments as a JSON list."`
		Action string `arg:"" enum:"init,workspace-select,plan,apply,destroy" help:"Action to print the command line of: 'init', 'workspace-select', 'plan', 'apply' or 'destroy'."`
	} `cmd:"" help:"Print the command line of a goal action."`

	Markers struct {
		File string `arg:"" optional:"" predictor:"file" help:"Raw log with phase markers. Reads from stdin when omitted."`
	} `cmd:"" help:"Print the phases found in a raw log with phase:<name> markers."`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions."`

	Version struct{} `cmd:"" help:"Show tfgoal version."`
}

type globalCliFlags struct {
	VersionFlag    bool   `hidden:"true" name:"version" help:"Show tfgoal version."`
	Chdir          string `env:"TFGOAL_CHDIR" short:"C" optional:"true" predictor:"file" help:"Set working directory."`
	LogLevel       string `env:"TFGOAL_LOG_LEVEL" optional:"true" default:"warn" enum:"disabled,trace,debug,info,warn,error,fatal" help:"Log level to use: 'disabled', 'trace', 'debug', 'info', 'warn', 'error', or 'fatal'."`
	LogFmt         string `env:"TFGOAL_LOG_FMT" optional:"true" default:"console" enum:"console,text,json" help:"Log format to use: 'console', 'text', or 'json'."`
	LogDestination string `env:"TFGOAL_LOG_DESTINATION" optional:"true" default:"stderr" enum:"stderr,stdout" help:"Destination channel of log messages: 'stderr' or 'stdout'."`
}

type goalCliFlags struct {
	Config  string `env:"TFGOAL_CONFIG" short:"f" required:"" predictor:"file" help:"Goal registration file (.hcl, .yaml, .toml or .json)."`
	LogURL  string `env:"TFGOAL_LOG_URL" help:"URL of the log of this invocation, reported as an external link."`
	LogFile string `env:"TFGOAL_LOG_FILE" predictor:"file" help:"Also append the raw command output to this file."`
	Output  string `env:"TFGOAL_OUTPUT" short:"o" default:"text" enum:"text,json" help:"Result format: 'text' or 'json'."`
}
