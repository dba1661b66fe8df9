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

// Package progress renders the acquisition pipeline's and check engine's
// progress callbacks to a terminal spinner, and mirrors every event to a
// structured logger for non-interactive runs.
package progress

import (
	"fmt"
	"sync"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/pterm/pterm"

	"github.com/cratecheck/cratecheck/internal/acquire"
	"github.com/cratecheck/cratecheck/internal/check"
)

// Reporter drives a single pterm spinner across the lifetime of one
// check-release run. Its two adapter methods, Acquire and Check, satisfy
// acquire.ProgressFunc and check.ProgressFunc respectively, so one Reporter
// can be threaded into both the snapshot-acquisition pipeline and the
// release-check engine.
type Reporter struct {
	log   logging.Logger
	quiet bool
	mu    sync.Mutex
	spin  *pterm.SpinnerPrinter
}

// New builds a Reporter. When quiet is true the spinner is never started and
// every event is only sent to log.
func New(log logging.Logger, quiet bool) *Reporter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Reporter{log: log, quiet: quiet}
}

// Acquire adapts Reporter to acquire.ProgressFunc.
func (r *Reporter) Acquire(stage, detail string) {
	r.log.Debug(stage, "detail", detail)
	r.update(fmt.Sprintf("%s: %s", stage, detail))
}

// AcquireFunc returns r.Acquire as an acquire.ProgressFunc value.
func (r *Reporter) AcquireFunc() acquire.ProgressFunc {
	return r.Acquire
}

// Check adapts Reporter to check.ProgressFunc. A non-nil err is logged at
// Info level and surfaced in the spinner text; it never aborts the run, since
// check.ProgressFunc only ever reports non-fatal events.
func (r *Reporter) Check(msg string, err error) {
	if err != nil {
		r.log.Info(msg, "error", err)
		r.update(fmt.Sprintf("%s: %v", msg, err))
		return
	}
	r.log.Debug(msg)
	r.update(msg)
}

// CheckFunc returns r.Check as a check.ProgressFunc value.
func (r *Reporter) CheckFunc() check.ProgressFunc {
	return r.Check
}

func (r *Reporter) update(text string) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin == nil {
		s, err := checkSpinner.
			WithRemoveWhenDone(false).
			Start(text)
		if err != nil {
			return
		}
		r.spin = s
		return
	}
	r.spin.UpdateText(text)
}

// Done stops the spinner, if one was started, printing a final success
// message. Safe to call even when no spinner was ever started (e.g. a quiet
// run, or a run that never reported any progress).
func (r *Reporter) Done(summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin == nil {
		return
	}
	r.spin.Success(summary)
	r.spin = nil
}

// Fail stops the spinner, if one was started, printing a final failure
// message.
func (r *Reporter) Fail(summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin == nil {
		return
	}
	r.spin.Fail(summary)
	r.spin = nil
}
