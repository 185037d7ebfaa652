// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package lift

// Options configure value generation.
type Options struct {
	// VerboseValueNames annotates generated values with the driver spec they
	// originate from.
	VerboseValueNames bool
	// CellBasedValueNames derives value names from the producing cell rather
	// than the destination.
	CellBasedValueNames bool
	// SimplifyAndOrGates applies algebraic identities (e.g. and(x, 0) -> 0)
	// during emission.
	SimplifyAndOrGates bool
	// SimplifyMuxes folds muxes whose arms are identical.
	SimplifyMuxes bool
	// UsePoison emits the IR poison value instead of zero for unknown or
	// high-impedance inputs.
	UsePoison bool
}

// DefaultOptions returns the options used when nothing is configured
// explicitly.
func DefaultOptions() Options {
	return Options{
		CellBasedValueNames: true,
		SimplifyAndOrGates:  true,
		SimplifyMuxes:       true,
	}
}
