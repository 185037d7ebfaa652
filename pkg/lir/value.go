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

import (
	"fmt"
	"math/big"
)

// Value is anything usable as an instruction operand: a constant, a poison
// value, a function parameter, or the result of an earlier instruction.
type Value interface {
	// Type returns the type of this value.
	Type() Type
	// operand renders this value as an instruction operand.
	operand() string
}

// ============================================================================
// Constants
// ============================================================================

// Const is an integer literal of fixed width.  The value is always held in
// canonical unsigned form, i.e. within [0, 2^width).
type Const struct {
	typ   Type
	value *big.Int
}

// NewConst constructs a literal of the given type, truncating the value to
// the type width.
func NewConst(typ Type, value *big.Int) *Const {
	v := new(big.Int).And(value, mask(typ.Width()))
	return &Const{typ, v}
}

// ConstUint constructs a literal of the given width from an unsigned
// integer.
func ConstUint(val uint64, width int) *Const {
	return NewConst(IntType(width), new(big.Int).SetUint64(val))
}

// ConstZero constructs the all-zeros literal of the given width.
func ConstZero(width int) *Const {
	return &Const{IntType(width), big.NewInt(0)}
}

// ConstFromBits constructs a literal of width len(bits) from a binary
// string given most significant bit first.  Every character must be '0' or
// '1'.
func ConstFromBits(bits string) *Const {
	value, ok := new(big.Int).SetString(bits, 2)
	if !ok {
		panic(fmt.Sprintf("malformed bit string \"%s\"", bits))
	}
	//
	return &Const{IntType(len(bits)), value}
}

// Type implementation for the Value interface.
func (c *Const) Type() Type {
	return c.typ
}

// Value returns the (unsigned) integer value of this literal.
func (c *Const) Value() *big.Int {
	return c.value
}

// IsZero indicates whether this literal is zero.
func (c *Const) IsZero() bool {
	return c.value.Sign() == 0
}

// IsAllOnes indicates whether every bit of this literal is set.
func (c *Const) IsAllOnes() bool {
	return c.value.Cmp(mask(c.typ.Width())) == 0
}

func (c *Const) operand() string {
	return c.value.String()
}

func (c *Const) String() string {
	return fmt.Sprintf("%s %s", c.typ, c.value)
}

// ============================================================================
// Poison
// ============================================================================

// Poison is the IR poison value, standing in for an unknown or
// high-impedance input when so configured.
type Poison struct {
	typ Type
}

// NewPoison constructs a poison value of the given width.
func NewPoison(width int) *Poison {
	return &Poison{IntType(width)}
}

// Type implementation for the Value interface.
func (p *Poison) Type() Type {
	return p.typ
}

func (p *Poison) operand() string {
	return "poison"
}

// ============================================================================
// Parameters
// ============================================================================

// Param is a function parameter.
type Param struct {
	name string
	typ  Type
}

// Type implementation for the Value interface.
func (p *Param) Type() Type {
	return p.typ
}

// Name returns the name of this parameter.
func (p *Param) Name() string {
	return p.name
}

func (p *Param) operand() string {
	return "%" + p.name
}

// mask returns 2^width - 1.
func mask(width int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return m.Sub(m, big.NewInt(1))
}
