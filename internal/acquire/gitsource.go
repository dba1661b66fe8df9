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
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"
)

const (
	errOpenProjectRepo     = "failed to open the project's own git repository"
	errResolveBaselineRev  = "failed to resolve baseline revision"
	errCloneBaselineRev    = "failed to clone baseline revision into placeholder workspace"
	errCheckoutBaselineRev = "failed to checkout baseline revision"
)

// CheckoutBaselineRevision materializes the project's own repository, as it
// stood at rev, into dir. This is how a `--baseline-rev` request is turned
// into a local manifest: clone the repo's working tree (without its .git
// history) into dir, then hard-reset the resulting worktree to rev.
func CheckoutBaselineRevision(projectRoot, rev, dir string) (manifestPath string, err error) {
	origin, err := git.PlainOpen(projectRoot)
	if err != nil {
		return "", errors.Wrap(err, errOpenProjectRepo)
	}

	hash, err := origin.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", errors.Wrapf(err, "%s: %q", errResolveBaselineRev, rev)
	}

	fs := osfs.New(dir, osfs.WithBoundOS())
	repo, err := git.Clone(memory.NewStorage(), fs, &git.CloneOptions{
		URL: projectRoot,
	})
	if err != nil {
		return "", errors.Wrap(err, errCloneBaselineRev)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, errCheckoutBaselineRev)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", errors.Wrapf(err, "%s: %s", errCheckoutBaselineRev, hash.String())
	}

	return filepath.Join(dir, "Cargo.toml"), nil
}
