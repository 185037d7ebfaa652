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
package lir

import "fmt"

// Type is an integer type of fixed bit width, the only value type in this
// IR.
type Type struct {
	width int
}

// IntType returns the integer type of the given width, which must be
// positive.
func IntType(width int) Type {
	if width <= 0 {
		panic(fmt.Sprintf("invalid integer width %d", width))
	}
	//
	return Type{width}
}

// Width returns the bit width of this type.
func (t Type) Width() int {
	return t.width
}

func (t Type) String() string {
	return fmt.Sprintf("i%d", t.width)
}
