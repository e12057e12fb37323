// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retry classifies command errors into a RetryAction and
// drives the exponential backoff schedule between attempts, feeding
// node.Set's SetPrimary transition on MOVED/REDIRECT.
package retry

import (
	"time"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/internal/backoff"
)

// Action is the decision a failed command attempt resolves to.
type Action int

const (
	// DontRetry means the error is final; surface it to the caller.
	DontRetry Action = iota
	// TryAgain means retry on the same node after a backoff sleep
	// (LOADING, BUSY).
	TryAgain
	// Moved means retry against TargetAddr, also updating the
	// primary (MOVED, REDIRECT).
	Moved
	// Ask means retry exactly once against TargetAddr, prefixed with
	// ASKING, without updating the primary.
	Ask
)

// String names the action for metrics labels and diagnostics.
func (a Action) String() string {
	switch a {
	case DontRetry:
		return "dont_retry"
	case TryAgain:
		return "try_again"
	case Moved:
		return "moved"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// Decision is the outcome of classifying a command error.
type Decision struct {
	Action Action
	TargetAddr string
}

// Classify maps a command error to a Decision, applying the
// redirect-handling rule for MOVED/ASK/REDIRECT. Non-command errors
// (connection/protocol errors) are not handled here; callers only call
// Classify once they have a *command.Error.
func Classify(err *command.Error) Decision {
	switch err.Kind {
	case command.ErrorMoved, command.ErrorRedirect:
		return Decision{Action: Moved, TargetAddr: err.TargetAddr}
	case command.ErrorAsk:
		return Decision{Action: Ask, TargetAddr: err.TargetAddr}
	case command.ErrorLoading, command.ErrorBusy:
		return Decision{Action: TryAgain}
	default:
		return Decision{Action: DontRetry}
	}
}

// Driver sequences backoff waits across repeated attempts of a single
// command, bounding total redirects to 1 per its decision.
type Driver struct {
	schedule backoff.Schedule
	attempt int
	redirected bool
}

// NewDriver returns a Driver configured from the retry schedule.
func NewDriver(schedule backoff.Schedule) *Driver {
	return &Driver{schedule: schedule}
}

// NextWait returns the backoff wait before the next TryAgain attempt,
// or ok=false when the schedule is exhausted.
func (d *Driver) NextWait() (time.Duration, bool) {
	wait, ok := d.schedule.Wait(d.attempt)
	d.attempt++
	return wait, ok
}

// AllowRedirect reports whether a MOVED/ASK redirect may still be
// followed for this command attempt, consuming the single allowance if
// so.
func (d *Driver) AllowRedirect() bool {
	if d.redirected {
		return false
	}
	d.redirected = true
	return true
}
