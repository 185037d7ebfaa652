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
	"math/bits"
)

// Builder appends instructions to the function it is pointed at.  Operand
// width disagreements are programmer contract violations and panic.  Two
// constant operands fold into a constant rather than emitting an
// instruction.
type Builder struct {
	fn   *Function
	next int
}

// NewBuilder constructs a builder with no insertion point.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetInsertPoint directs subsequent instructions into the given function.
func (b *Builder) SetInsertPoint(fn *Function) {
	b.fn = fn
	b.next = 0
}

// append registers a freshly created instruction with the current function,
// assigning a default result name.
func (b *Builder) append(instr *Instr) *Instr {
	if b.fn == nil {
		panic("builder has no insertion point")
	}
	//
	instr.name = fmt.Sprintf("t%d", b.next)
	b.next++
	b.fn.instrs = append(b.fn.instrs, instr)
	//
	return instr
}

// IntOf returns a literal of the given type holding val.
func (b *Builder) IntOf(typ Type, val uint64) *Const {
	return ConstUint(val, typ.Width())
}

// Zero returns the all-zeros literal of the given width.
func (b *Builder) Zero(width int) *Const {
	return ConstZero(width)
}

// AllOnes returns the all-ones literal of the given width.
func (b *Builder) AllOnes(width int) *Const {
	return NewConst(IntType(width), mask(width))
}

// ============================================================================
// Binary operations
// ============================================================================

func (b *Builder) binary(op Op, x, y Value) Value {
	if x.Type() != y.Type() {
		panic(fmt.Sprintf("width mismatch for %s (%s vs %s)", op, x.Type(), y.Type()))
	}
	// Trivial constant folding.
	if xc, ok := x.(*Const); ok {
		if yc, ok := y.(*Const); ok {
			return foldBinary(op, xc, yc)
		}
	}
	//
	return b.append(&Instr{op: op, typ: x.Type(), args: []Value{x, y}})
}

// CreateAnd emits bitwise conjunction.
func (b *Builder) CreateAnd(x, y Value) Value { return b.binary(OpAnd, x, y) }

// CreateOr emits bitwise disjunction.
func (b *Builder) CreateOr(x, y Value) Value { return b.binary(OpOr, x, y) }

// CreateXor emits bitwise exclusive or.
func (b *Builder) CreateXor(x, y Value) Value { return b.binary(OpXor, x, y) }

// CreateAdd emits modular addition.
func (b *Builder) CreateAdd(x, y Value) Value { return b.binary(OpAdd, x, y) }

// CreateSub emits modular subtraction.
func (b *Builder) CreateSub(x, y Value) Value { return b.binary(OpSub, x, y) }

// CreateMul emits modular multiplication.
func (b *Builder) CreateMul(x, y Value) Value { return b.binary(OpMul, x, y) }

// CreateUDiv emits unsigned division.
func (b *Builder) CreateUDiv(x, y Value) Value { return b.binary(OpUDiv, x, y) }

// CreateURem emits unsigned remainder.
func (b *Builder) CreateURem(x, y Value) Value { return b.binary(OpURem, x, y) }

// CreateShl emits a logical left shift.
func (b *Builder) CreateShl(x, y Value) Value { return b.binary(OpShl, x, y) }

// CreateLShr emits a logical right shift.
func (b *Builder) CreateLShr(x, y Value) Value { return b.binary(OpLShr, x, y) }

// CreateAShr emits an arithmetic right shift.
func (b *Builder) CreateAShr(x, y Value) Value { return b.binary(OpAShr, x, y) }

// CreateShlBy emits a logical left shift by a literal amount.
func (b *Builder) CreateShlBy(x Value, amount int) Value {
	if amount == 0 {
		return x
	}
	//
	return b.CreateShl(x, b.IntOf(x.Type(), uint64(amount)))
}

// CreateLShrBy emits a logical right shift by a literal amount.
func (b *Builder) CreateLShrBy(x Value, amount int) Value {
	if amount == 0 {
		return x
	}
	//
	return b.CreateLShr(x, b.IntOf(x.Type(), uint64(amount)))
}

// ============================================================================
// Unary operations
// ============================================================================

// CreateNot emits bitwise complement (as exclusive or with all ones).
func (b *Builder) CreateNot(x Value) Value {
	return b.CreateXor(x, b.AllOnes(x.Type().Width()))
}

// CreateNeg emits two's-complement negation (as subtraction from zero).
func (b *Builder) CreateNeg(x Value) Value {
	return b.CreateSub(b.Zero(x.Type().Width()), x)
}

// CreateCtPop emits a population count intrinsic call.
func (b *Builder) CreateCtPop(x Value) Value {
	if xc, ok := x.(*Const); ok {
		popcnt := uint64(0)
		//
		for _, w := range xc.value.Bits() {
			popcnt += uint64(bits.OnesCount(uint(w)))
		}
		//
		return b.IntOf(x.Type(), popcnt)
	}
	//
	return b.append(&Instr{op: OpCtPop, typ: x.Type(), args: []Value{x}})
}

// ============================================================================
// Comparisons and selection
// ============================================================================

// CreateICmp emits an integer comparison yielding one bit.
func (b *Builder) CreateICmp(pred Pred, x, y Value) Value {
	if x.Type() != y.Type() {
		panic(fmt.Sprintf("width mismatch for icmp %s (%s vs %s)", pred, x.Type(), y.Type()))
	}
	//
	if xc, ok := x.(*Const); ok {
		if yc, ok := y.(*Const); ok {
			return foldICmp(pred, xc, yc)
		}
	}
	//
	return b.append(&Instr{op: OpICmp, pred: pred, typ: IntType(1), args: []Value{x, y}})
}

// CreateICmpEQ emits an equality comparison.
func (b *Builder) CreateICmpEQ(x, y Value) Value { return b.CreateICmp(PredEQ, x, y) }

// CreateICmpNE emits an inequality comparison.
func (b *Builder) CreateICmpNE(x, y Value) Value { return b.CreateICmp(PredNE, x, y) }

// CreateICmpULT emits an unsigned less-than comparison.
func (b *Builder) CreateICmpULT(x, y Value) Value { return b.CreateICmp(PredULT, x, y) }

// CreateICmpULE emits an unsigned at-most comparison.
func (b *Builder) CreateICmpULE(x, y Value) Value { return b.CreateICmp(PredULE, x, y) }

// CreateICmpUGT emits an unsigned greater-than comparison.
func (b *Builder) CreateICmpUGT(x, y Value) Value { return b.CreateICmp(PredUGT, x, y) }

// CreateICmpUGE emits an unsigned at-least comparison.
func (b *Builder) CreateICmpUGE(x, y Value) Value { return b.CreateICmp(PredUGE, x, y) }

// CreateSelect emits a two-way selection on a 1-bit condition.
func (b *Builder) CreateSelect(cond, x, y Value) Value {
	if cond.Type().Width() != 1 {
		panic(fmt.Sprintf("select condition has width %d", cond.Type().Width()))
	} else if x.Type() != y.Type() {
		panic(fmt.Sprintf("width mismatch for select (%s vs %s)", x.Type(), y.Type()))
	}
	//
	if c, ok := cond.(*Const); ok {
		if c.IsZero() {
			return y
		}
		//
		return x
	}
	//
	return b.append(&Instr{op: OpSelect, typ: x.Type(), args: []Value{cond, x, y}})
}

// ============================================================================
// Width adjustment
// ============================================================================

// CreateZExt emits a zero extension to the given type, which must be
// strictly wider.
func (b *Builder) CreateZExt(x Value, typ Type) Value {
	if typ.Width() <= x.Type().Width() {
		panic(fmt.Sprintf("zext from %s to %s", x.Type(), typ))
	}
	//
	if xc, ok := x.(*Const); ok {
		return NewConst(typ, xc.value)
	}
	//
	return b.append(&Instr{op: OpZExt, typ: typ, args: []Value{x}})
}

// CreateTrunc emits a truncation to the given type, which must be strictly
// narrower.
func (b *Builder) CreateTrunc(x Value, typ Type) Value {
	if typ.Width() >= x.Type().Width() {
		panic(fmt.Sprintf("trunc from %s to %s", x.Type(), typ))
	}
	//
	if xc, ok := x.(*Const); ok {
		return NewConst(typ, xc.value)
	}
	//
	return b.append(&Instr{op: OpTrunc, typ: typ, args: []Value{x}})
}

// CreateZExtOrTrunc adjusts a value to the given type, zero-extending or
// truncating as required.
func (b *Builder) CreateZExtOrTrunc(x Value, typ Type) Value {
	switch {
	case typ.Width() > x.Type().Width():
		return b.CreateZExt(x, typ)
	case typ.Width() < x.Type().Width():
		return b.CreateTrunc(x, typ)
	}
	//
	return x
}

// ============================================================================
// Return
// ============================================================================

// CreateRet appends the function return, which must match the declared
// return type.
func (b *Builder) CreateRet(x Value) {
	if b.fn == nil {
		panic("builder has no insertion point")
	} else if x.Type() != b.fn.retType {
		panic(fmt.Sprintf("return type mismatch (%s vs %s)", x.Type(), b.fn.retType))
	} else if b.fn.ret != nil {
		panic(fmt.Sprintf("function \"%s\" already has a return", b.fn.name))
	}
	//
	b.fn.ret = x
}

// ============================================================================
// Constant folding
// ============================================================================

func foldBinary(op Op, x, y *Const) Value {
	var (
		w = x.typ.Width()
		r = new(big.Int)
	)
	//
	switch op {
	case OpAnd:
		r.And(x.value, y.value)
	case OpOr:
		r.Or(x.value, y.value)
	case OpXor:
		r.Xor(x.value, y.value)
	case OpAdd:
		r.Add(x.value, y.value)
	case OpSub:
		r.Sub(x.value, y.value)
	case OpMul:
		r.Mul(x.value, y.value)
	case OpUDiv:
		if y.IsZero() {
			// Division by zero is undefined; zero is as good a choice as any.
			return ConstZero(w)
		}
		//
		r.Div(x.value, y.value)
	case OpURem:
		if y.IsZero() {
			return ConstZero(w)
		}
		//
		r.Mod(x.value, y.value)
	case OpShl, OpLShr, OpAShr:
		return foldShift(op, x, y)
	default:
		panic(fmt.Sprintf("cannot fold %s", op))
	}
	//
	return NewConst(x.typ, r)
}

func foldShift(op Op, x, y *Const) Value {
	w := x.typ.Width()
	//
	if !y.value.IsUint64() || y.value.Uint64() >= uint64(w) {
		// Out-of-range shifts yield zero (or sign fill).
		if op == OpAShr && x.value.Bit(w-1) == 1 {
			return NewConst(x.typ, mask(w))
		}
		//
		return ConstZero(w)
	}
	//
	var (
		amount = uint(y.value.Uint64())
		r      = new(big.Int)
	)
	//
	switch op {
	case OpShl:
		r.Lsh(x.value, amount)
	case OpLShr:
		r.Rsh(x.value, amount)
	case OpAShr:
		r.Rsh(x.value, amount)
		//
		if x.value.Bit(w-1) == 1 {
			fill := new(big.Int).Lsh(mask(int(amount)), uint(w)-amount)
			r.Or(r, fill)
		}
	}
	//
	return NewConst(x.typ, r)
}

func foldICmp(pred Pred, x, y *Const) Value {
	var (
		cmp    = x.value.Cmp(y.value)
		sx     = signedValue(x)
		sy     = signedValue(y)
		scmp   = sx.Cmp(sy)
		result bool
	)
	//
	switch pred {
	case PredEQ:
		result = cmp == 0
	case PredNE:
		result = cmp != 0
	case PredULT:
		result = cmp < 0
	case PredULE:
		result = cmp <= 0
	case PredUGT:
		result = cmp > 0
	case PredUGE:
		result = cmp >= 0
	case PredSLT:
		result = scmp < 0
	case PredSLE:
		result = scmp <= 0
	case PredSGT:
		result = scmp > 0
	case PredSGE:
		result = scmp >= 0
	}
	//
	if result {
		return ConstUint(1, 1)
	}
	//
	return ConstZero(1)
}

// signedValue reinterprets the canonical unsigned value of a literal as a
// signed integer.
func signedValue(c *Const) *big.Int {
	w := c.typ.Width()
	//
	if c.value.Bit(w-1) == 1 {
		m := new(big.Int).Lsh(big.NewInt(1), uint(w))
		return new(big.Int).Sub(c.value, m)
	}
	//
	return c.value
}
