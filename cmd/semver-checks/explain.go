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

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/cratecheck/cratecheck/internal/lint"
)

const errUnknownLint = "no registered lint with id %q"

// explainCmd prints one lint's human-facing description without running
// it, the way the original tool's `list`/explain support does.
type explainCmd struct {
	LintID string `arg:"" name:"lint-id" help:"The lint id to explain, e.g. enum_missing."`
	List   bool   `help:"Ignore lint-id and list every registered lint id instead."`
}

func (c *explainCmd) Run() error {
	catalog := lint.Default()

	if c.List {
		for _, l := range catalog.All() {
			fmt.Printf("%s\t%s\n", l.ID, l.HumanReadableName)
		}
		return nil
	}

	l, ok := catalog.Get(c.LintID)
	if !ok {
		return errors.Errorf(errUnknownLint, c.LintID)
	}

	fmt.Fprintf(os.Stdout, "%s: %s\n", l.ID, l.HumanReadableName)
	if l.Description != "" {
		fmt.Fprintf(os.Stdout, "\n%s\n", l.Description)
	}
	fmt.Fprintf(os.Stdout, "\nrequired update: %s\n", l.RequiredUpdate.String())
	fmt.Fprintf(os.Stdout, "default level: %s\n", l.LintLevel)
	if l.ReferenceLink != "" {
		fmt.Fprintf(os.Stdout, "reference: %s\n", l.ReferenceLink)
	}
	return nil
}
