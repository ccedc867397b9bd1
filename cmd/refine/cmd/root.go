// Copyright 2020 CUE Authors
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

// Package cmd is the refine command-line front end: a thin cobra
// wrapper whose `eval` subcommand reads a JSON-encoded source expression
// node (from a file or stdin), feeds it through the parser adapter and
// evaluator and prints the simplified result, and whose `check`
// subcommand runs the consistency checker over --pre/--post JSON files;
// mostly useful for exploring the engine's rules from a shell. It
// mirrors cmd/cue/cmd's Command/Main/mainErr shape, trimmed to the
// handful of global flags this tool actually needs.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

// ErrPrintedError is returned by a subcommand when an error has already been
// written to stderr, so Main can exit non-zero without printing again.
var ErrPrintedError = xerrors.New("terminating because of errors")

// Command wraps the active cobra.Command the same way cmd/cue/cmd does,
// so subcommands can reach shared flags and output streams uniformly.
type Command struct {
	*cobra.Command
	root *cobra.Command
	cfg  *Config
}

func newRootCmd() *Command {
	root := &cobra.Command{
		Use:          "refine",
		Short:        "refine parses, checks and simplifies refinement expressions",
		SilenceUsage: true,
	}
	c := &Command{Command: root, root: root}
	c.cfg = defaultConfig()

	addGlobalFlags(c, root.PersistentFlags())

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}

	root.AddCommand(newEvalCmd(c))
	root.AddCommand(newCheckCmd(c))
	return c
}

// MainTest is like Main but is meant to be driven by testscript's
// re-exec harness rather than a real process.
func MainTest() int {
	return Main()
}

// Main runs the refine tool and returns the process exit code.
func Main() int {
	if err := mainErr(context.Background(), os.Args[1:]); err != nil {
		if !xerrors.Is(err, ErrPrintedError) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func mainErr(ctx context.Context, args []string) error {
	c := newRootCmd()
	c.root.SetArgs(args)
	return c.root.ExecuteContext(ctx)
}
