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

// Package backoff computes an exponential-with-jitter retry wait,
// clamped between a minimum and maximum and bounded by a maximum
// attempt count.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Schedule is the exponential backoff's tunable parameters.
type Schedule struct {
	ExponentBase float64
	Factor time.Duration
	MinWait time.Duration
	MaxWait time.Duration
	// MaxAttempts bounds how many attempts the schedule allows before
	// giving up; zero means unbounded.
	MaxAttempts int
}

// Wait computes the jittered wait duration for the given 0-indexed
// attempt number, or ok=false when the schedule says to give up.
//
// wait = clamp(factor * exponentBase^attempt, minWait, maxWait), with
// uniform jitter applied in [0, wait].
func (s Schedule) Wait(attempt int) (time.Duration, bool) {
	if s.MaxAttempts > 0 && attempt >= s.MaxAttempts {
		return 0, false
	}

	raw := float64(s.Factor) * math.Pow(s.ExponentBase, float64(attempt))
	clamped := clamp(raw, float64(s.MinWait), float64(s.MaxWait))

	jittered := clamped
	if clamped > 0 {
		jittered = rand.Float64() * clamped
	}
	return time.Duration(jittered), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
