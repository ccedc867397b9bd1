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

package cmd

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the optional `.refine.yaml` project configuration, grounded
// on cue/load.Config's role of carrying defaults a CLI invocation may
// override per-flag.
type Config struct {
	// Domain is the default refinement domain that eval and check assume
	// when no explicit --domain flag is given.
	Domain string `yaml:"domain"`

	// ReplaceUnknownVars mirrors refeval.Options.ReplaceUnknownVars.
	ReplaceUnknownVars bool `yaml:"replaceUnknownVars"`
}

func defaultConfig() *Config {
	return &Config{Domain: "int"}
}

// loadConfig reads path (or ./.refine.yaml when path is empty) if it
// exists, overlaying it onto the defaults. A missing file is not an
// error; a malformed one is.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = ".refine.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addGlobalFlags(c *Command, fs *pflag.FlagSet) {
	fs.String("config", "", "path to a .refine.yaml config file")
}
