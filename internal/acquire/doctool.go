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

package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	cargoCapLints = "--cap-lints=allow"

	errRunCargoUpdate   = "dependency refresh failed"
	errRunCargoDoc      = "documentation generation failed"
	errRunCargoMetadata = "failed to read placeholder workspace metadata"
	errNoLibTarget      = "package %q has no library target to document"
	errDocJSONMissing   = "doc tool did not produce %s in the placeholder workspace's target directory"
)

// DocToolRunner is the seam between the resolve pipeline and the external
// documentation tool, so a test can substitute a fake that never shells
// out.
type DocToolRunner interface {
	RefreshDependencies(ctx context.Context, req Request, settings GenSettings, ws *Workspace) error
	GenerateDocs(ctx context.Context, req Request, settings GenSettings, ws *Workspace, pkgName string) error
	LocateOutput(ctx context.Context, ws *Workspace, pkgName string, settings GenSettings) (docPath, manifestPath string, err error)
}

// CargoDocTool is the production DocToolRunner: it shells out to the cargo
// binary on PATH.
type CargoDocTool struct{}

// doctoolError wraps a failed external command with the reproduction recipe:
// the exact shell commands a user could run to reproduce the failure in
// isolation.
type doctoolError struct {
	step    string
	cause   error
	output  string
	recipe  []string
	wrapMsg string
}

func (e *doctoolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.wrapMsg, e.cause)
	if e.output != "" {
		fmt.Fprintf(&b, "\n--- %s output ---\n%s", e.step, strings.TrimRight(e.output, "\n"))
	}
	fmt.Fprintf(&b, "\nreproduce with:\n  %s", strings.Join(e.recipe, "\n  "))
	return b.String()
}

func (e *doctoolError) Unwrap() error { return e.cause }

// runCargo runs a cargo subcommand rooted at dir. When quiet is false (the
// default), stdout/stderr are inherited so long-running external commands
// stream their own progress; when quiet is true, combined output is
// captured instead so it can be folded into an error message without
// leaking it onto a clean terminal run.
func runCargo(ctx context.Context, dir string, quiet bool, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir

	var captured bytes.Buffer
	if quiet {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = io.MultiWriter(os.Stderr, &captured)
	}

	err := cmd.Run()
	return captured.String(), err
}

// RefreshDependencies invokes `cargo update` on the placeholder workspace
// so transitive dependencies match the freshly generated lockfile before
// docs are built.
func (CargoDocTool) RefreshDependencies(ctx context.Context, req Request, settings GenSettings, ws *Workspace) error {
	output, err := runCargo(ctx, ws.Dir(), settings.Quiet, "update")
	if err != nil {
		return &doctoolError{
			step:    "cargo update",
			cause:   err,
			output:  output,
			recipe:  reproductionRecipe(req, settings, "update"),
			wrapMsg: errRunCargoUpdate,
		}
	}
	return nil
}

// GenerateDocs invokes the external documentation command on the
// placeholder workspace, targeted at pkgName, with doc.rustdoc format JSON
// enabled and private/hidden items included.
func (CargoDocTool) GenerateDocs(ctx context.Context, req Request, settings GenSettings, ws *Workspace, pkgName string) error {
	args := []string{"doc", "--package", pkgName, "--no-deps", "--document-private-items"}
	if settings.Target != "" {
		args = append(args, "--target", settings.Target)
	}

	rustdocflags := strings.Join(append(append([]string(nil), settings.CompileFlags...), cargoCapLints), " ")
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = ws.Dir()
	cmd.Env = append(os.Environ(),
		"RUSTC_BOOTSTRAP=1",
		"RUSTDOCFLAGS="+rustdocflags+" -Zunstable-options --document-hidden-items --output-format json",
	)

	var captured bytes.Buffer
	if settings.Quiet {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = io.MultiWriter(os.Stderr, &captured)
	}

	if err := cmd.Run(); err != nil {
		return &doctoolError{
			step:    "cargo doc",
			cause:   err,
			output:  captured.String(),
			recipe:  reproductionRecipe(req, settings, "check"),
			wrapMsg: errRunCargoDoc,
		}
	}
	return nil
}

// reproductionRecipe builds the cargo new + cargo add + (update|check)
// sequence a user can run standalone to reproduce a doctool failure,
// matching the request's feature selection and target triple.
func reproductionRecipe(req Request, settings GenSettings, lastStep string) []string {
	addArgs := []string{"cargo", "add"}
	switch req.Kind {
	case SourceRegistry:
		addArgs = append(addArgs, fmt.Sprintf("%s@=%s", req.CrateName, req.Version))
	case SourceLocal:
		addArgs = append(addArgs, "--path", localDependencyPath(req))
	}
	if !req.Features.DefaultFeatures {
		addArgs = append(addArgs, "--no-default-features")
	}
	for _, f := range req.Features.Features {
		addArgs = append(addArgs, "--features", f)
	}

	lastArgs := []string{"cargo", lastStep}
	if lastStep == "check" && settings.Target != "" {
		lastArgs = append(lastArgs, "--target", settings.Target)
	}

	return []string{
		"cargo new --lib repro && cd repro",
		strings.Join(addArgs, " "),
		strings.Join(lastArgs, " "),
	}
}

type cargoMetadataTarget struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

type cargoMetadataPackage struct {
	Name         string                `json:"name"`
	ManifestPath string                `json:"manifest_path"`
	Targets      []cargoMetadataTarget `json:"targets"`
}

type cargoMetadataOutput struct {
	Packages []cargoMetadataPackage `json:"packages"`
}

// LocateOutput determines the effective target triple, resolves pkgName's
// library target's canonical name via `cargo metadata`, and returns the
// path the doc tool should have written its JSON dump to and the path to
// pkgName's own Cargo.toml (so the caller can attach package metadata).
func (CargoDocTool) LocateOutput(ctx context.Context, ws *Workspace, pkgName string, settings GenSettings) (docPath, manifestPath string, err error) {
	cmd := exec.CommandContext(ctx, "cargo", "metadata", "--format-version=1")
	cmd.Dir = ws.Dir()
	out, err := cmd.Output()
	if err != nil {
		return "", "", errors.Wrap(err, errRunCargoMetadata)
	}

	var meta cargoMetadataOutput
	if err := json.Unmarshal(out, &meta); err != nil {
		return "", "", errors.Wrap(err, errRunCargoMetadata)
	}

	for _, pkg := range meta.Packages {
		if pkg.Name != pkgName {
			continue
		}
		libName := ""
		for _, t := range pkg.Targets {
			for _, kind := range t.Kind {
				if kind == "lib" || kind == "proc-macro" {
					libName = t.Name
				}
			}
		}
		if libName == "" {
			return "", "", errors.Errorf(errNoLibTarget, pkgName)
		}

		docFile := strings.ReplaceAll(libName, "-", "_") + ".json"
		targetSubdir := "doc"
		if settings.Target != "" {
			targetSubdir = filepath.Join(settings.Target, "doc")
		}
		return filepath.Join(ws.Dir(), "target", targetSubdir, docFile), pkg.ManifestPath, nil
	}

	return "", "", errors.Errorf(errNoLibTarget, pkgName)
}
