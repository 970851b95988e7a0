// Copyright 2023-2024 daviszhen
//
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

package jit

// EngineConfig is the explicit, threaded-through replacement for
// process-wide feature flags ("lazy-load on/off, jit-validate on/off,
// etc."). No package-level singleton carries these; both the
// Translator and the Chain take an EngineConfig value.
type EngineConfig struct {
	// LazyLoadEnabled is decoded from config and carried on the Chain,
	// but translator.go does not read it: whatever its value, every
	// column binding is read by an InsertReadValueOp placed ahead of the
	// operator that first consumes it, and no expression node gets a
	// LazyLoadBinding (see DESIGN.md's Open Question #1).
	LazyLoadEnabled bool `tag:"lazyLoad"`

	// ValueIDAccelerationEnabled toggles the dictionary value-id fast
	// path; when false all comparisons decode to value space.
	ValueIDAccelerationEnabled bool `tag:"valueIdAcceleration"`

	// JitValidateEnabled toggles whether a Validate operator (MVCC
	// visibility) is inserted for jittable sub-plans that read a data
	// table with MVCC arrays.
	JitValidateEnabled bool `tag:"jitValidate"`

	// MaxOutputChunkSize bounds Write-Tuples/Write-Offsets output
	// chunk size: output chunks flush once they reach this row count.
	MaxOutputChunkSize int `tag:"maxOutputChunkSize"`
}

// DefaultEngineConfig returns the configuration used when the caller
// does not load one from file: every feature flag defaults to
// enabled.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LazyLoadEnabled:            true,
		ValueIDAccelerationEnabled: true,
		JitValidateEnabled:         true,
		MaxOutputChunkSize:         2048,
	}
}
