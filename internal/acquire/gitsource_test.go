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
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitManifest(t *testing.T, wt *git.Worktree, version string) {
	t.Helper()
	f, err := wt.Filesystem.Create("Cargo.toml")
	if err != nil {
		t.Fatalf("create Cargo.toml: %v", err)
	}
	_, err = io.WriteString(f, "[package]\nname = \"demo\"\nversion = \""+version+"\"\n")
	if err != nil {
		t.Fatalf("write Cargo.toml: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := wt.Add("Cargo.toml"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(0, 0)}
	if _, err := wt.Commit("set version "+version, &git.CommitOptions{Author: sig}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestCheckoutBaselineRevisionMaterializesOlderManifest(t *testing.T) {
	origin := t.TempDir()
	repo, err := git.PlainInit(origin, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	commitManifest(t, wt, "1.0.0")
	firstCommit, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	v1Hash := firstCommit.Hash()

	commitManifest(t, wt, "2.0.0")

	dest := t.TempDir()
	dest = filepath.Join(dest, "checkout")
	manifestPath, err := CheckoutBaselineRevision(origin, v1Hash.String(), dest)
	if err != nil {
		t.Fatalf("CheckoutBaselineRevision: %v", err)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("reading checked-out manifest: %v", err)
	}
	if got := string(data); got != "[package]\nname = \"demo\"\nversion = \"1.0.0\"\n" {
		t.Errorf("manifest = %q, want the v1.0.0 content", got)
	}
}

func TestCheckoutBaselineRevisionErrorsOnUnknownRevision(t *testing.T) {
	origin := t.TempDir()
	repo, err := git.PlainInit(origin, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	commitManifest(t, wt, "1.0.0")

	if _, err := CheckoutBaselineRevision(origin, "not-a-real-revision", filepath.Join(t.TempDir(), "checkout")); err == nil {
		t.Error("expected an error for an unresolvable revision")
	}
}
