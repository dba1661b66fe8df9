// Copyright 2025 The Cratecheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config decodes the override surface a crate exposes: a
// workspace's and a package's `[metadata.cargo-semver-checks]` lint tables,
// merged with CLI overrides into the override.OverrideStack the
// release-check engine runs against.
package config

// QuietFlag is the kong-bound --quiet flag shared by every subcommand that
// drives a long-running external command.
type QuietFlag bool

// PrettyFlag is the resolved --color choice (false only for "never"),
// shared the same way as QuietFlag so a subcommand can tell its own
// renderer whether to colorize.
type PrettyFlag bool

// Format enumerates the global --output choice for report rendering.
type Format string

const (
	Default Format = "default"
	JSON    Format = "json"
)
