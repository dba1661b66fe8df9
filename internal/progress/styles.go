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

package progress

import (
	"fmt"

	"github.com/pterm/pterm"
)

var (
	scanPrefix = pterm.Prefix{
		Style: &pterm.Style{pterm.FgLightCyan},
		Text:  " 🔎",
	}

	spinnerStyle = &pterm.Style{pterm.FgDarkGray}
	msgStyle     = &pterm.Style{pterm.FgDefault}

	checkSpinner = pterm.DefaultSpinner.WithStyle(spinnerStyle).WithMessageStyle(msgStyle)

	successPrinter = &pterm.PrefixPrinter{
		MessageStyle: &pterm.Style{pterm.FgDefault},
		Prefix: pterm.Prefix{
			Style: &pterm.Style{pterm.FgLightGreen},
			Text:  " ✓ ",
		},
	}

	failPrinter = &pterm.PrefixPrinter{
		MessageStyle: &pterm.Style{pterm.FgDefault},
		Prefix: pterm.Prefix{
			Style: &pterm.Style{pterm.FgLightRed},
			Text:  " ✗ ",
		},
	}

	infoPrinter = &pterm.PrefixPrinter{
		MessageStyle: &pterm.Style{pterm.FgDefault},
		Prefix:       scanPrefix,
	}
)

func init() {
	checkSpinner.SuccessPrinter = successPrinter
	checkSpinner.FailPrinter = failPrinter
	checkSpinner.InfoPrinter = infoPrinter
}

// StepCounter prefixes msg with a "[index/total]" marker, used when walking
// a workspace's member crates one at a time.
func StepCounter(msg string, index, total int) string {
	return fmt.Sprintf("[%d/%d] %s", index, total, msg)
}
