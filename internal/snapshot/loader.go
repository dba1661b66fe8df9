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

package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	errReadSnapshot      = "failed to read snapshot file"
	errDecodeHeader      = "failed to decode snapshot format_version header"
	errDecodeSnapshot    = "failed to decode snapshot body"
	errMalformedSidecar  = "failed to parse sidecar package metadata, continuing without it"
)

// SupportedFormatVersions is the fixed allow-list of rustdoc JSON schema
// versions this loader understands. Unlisted versions are rejected outright
// rather than being decoded best-effort.
var SupportedFormatVersions = map[int]bool{
	30: true,
	31: true,
	32: true,
}

// UnsupportedFormatVersionError is returned when a snapshot declares a
// format_version outside SupportedFormatVersions.
type UnsupportedFormatVersionError struct {
	Version int
}

func (e *UnsupportedFormatVersionError) Error() string {
	return fmt.Sprintf("unsupported snapshot format_version %d", e.Version)
}

// MalformedSnapshotError wraps a JSON decode failure against a known
// format_version.
type MalformedSnapshotError struct {
	Version int
	Cause   error
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("malformed snapshot (format_version %d): %s", e.Version, e.Cause)
}

func (e *MalformedSnapshotError) Unwrap() error { return e.Cause }

// ProgressFunc receives non-fatal diagnostics, such as a sidecar metadata
// parse failure, that must not abort loading.
type ProgressFunc func(msg string, err error)

// Load reads the entire snapshot file into memory (a full parse-from-string
// is measurably simpler and, for rustdoc's JSON shape, not meaningfully
// slower than a streaming decode) and returns the decoded Crate.
//
// sidecarPath, if non-empty, is an adjacent Cargo.toml to attach as
// Crate.Metadata; a parse failure there is reported via progress and does
// not fail Load.
func Load(fs afero.Fs, path string, sidecarPath string, progress ProgressFunc) (*Crate, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, errReadSnapshot)
	}

	var header struct {
		FormatVersion int `json:"format_version"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, errors.Wrap(err, errDecodeHeader)
	}
	if !SupportedFormatVersions[header.FormatVersion] {
		return nil, &UnsupportedFormatVersionError{Version: header.FormatVersion}
	}

	var c Crate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, &MalformedSnapshotError{Version: header.FormatVersion, Cause: err}
	}

	if sidecarPath != "" {
		if ok, _ := afero.Exists(fs, sidecarPath); ok {
			sidecar, err := afero.ReadFile(fs, sidecarPath)
			if err != nil {
				if progress != nil {
					progress(errMalformedSidecar, err)
				}
			} else if meta, err := ParsePackageMetadata(sidecar); err != nil {
				if progress != nil {
					progress(errMalformedSidecar, err)
				}
			} else {
				c.Metadata = meta
			}
		}
	}

	return &c, nil
}
