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
	"strings"
)

// Op identifies an instruction opcode.
type Op uint8

// Instruction opcodes.  Binary opcodes require operands of identical width
// and produce a result of that width; OpICmp produces a 1-bit result; the
// cast opcodes change width only.
const (
	OpAnd Op = iota
	OpOr
	OpXor
	OpAdd
	OpSub
	OpMul
	OpUDiv
	OpURem
	OpShl
	OpLShr
	OpAShr
	OpICmp
	OpSelect
	OpZExt
	OpTrunc
	OpCtPop
)

var opNames = [...]string{
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpAdd: "add", OpSub: "sub",
	OpMul: "mul", OpUDiv: "udiv", OpURem: "urem", OpShl: "shl",
	OpLShr: "lshr", OpAShr: "ashr", OpICmp: "icmp", OpSelect: "select",
	OpZExt: "zext", OpTrunc: "trunc", OpCtPop: "ctpop",
}

// IsBinary indicates whether this opcode takes two operands of identical
// width and yields that width.
func (op Op) IsBinary() bool {
	return op <= OpAShr
}

func (op Op) String() string {
	return opNames[op]
}

// Pred is an integer comparison predicate.
type Pred uint8

// Comparison predicates.  Only unsigned orderings are generated at present;
// the signed forms exist for the signed-cell extension point.
const (
	PredEQ Pred = iota
	PredNE
	PredULT
	PredULE
	PredUGT
	PredUGE
	PredSLT
	PredSLE
	PredSGT
	PredSGE
)

var predNames = [...]string{
	PredEQ: "eq", PredNE: "ne", PredULT: "ult", PredULE: "ule",
	PredUGT: "ugt", PredUGE: "uge", PredSLT: "slt", PredSLE: "sle",
	PredSGT: "sgt", PredSGE: "sge",
}

func (p Pred) String() string {
	return predNames[p]
}

// Instr is a single IR instruction.  Instructions are created through a
// Builder and appended to exactly one function.
type Instr struct {
	op   Op
	pred Pred
	name string
	typ  Type
	args []Value
}

// Op returns the opcode of this instruction.
func (i *Instr) Op() Op {
	return i.op
}

// Pred returns the comparison predicate, meaningful only for OpICmp.
func (i *Instr) Pred() Pred {
	return i.pred
}

// Type implementation for the Value interface.
func (i *Instr) Type() Type {
	return i.typ
}

// Args returns the operands of this instruction.
func (i *Instr) Args() []Value {
	return i.args
}

// Name returns the result name of this instruction.
func (i *Instr) Name() string {
	return i.name
}

// SetName overrides the result name of this instruction.  Names must be
// unique within a function; the verifier enforces this.
func (i *Instr) SetName(name string) {
	if name != "" {
		i.name = name
	}
}

func (i *Instr) operand() string {
	return "%" + i.name
}

func (i *Instr) String() string {
	var r strings.Builder
	//
	fmt.Fprintf(&r, "%%%s = ", i.name)
	//
	switch i.op {
	case OpICmp:
		fmt.Fprintf(&r, "icmp %s %s %s, %s", i.pred, i.args[0].Type(),
			i.args[0].operand(), i.args[1].operand())
	case OpSelect:
		fmt.Fprintf(&r, "select i1 %s, %s %s, %s %s", i.args[0].operand(),
			i.args[1].Type(), i.args[1].operand(), i.args[2].Type(), i.args[2].operand())
	case OpZExt, OpTrunc:
		fmt.Fprintf(&r, "%s %s %s to %s", i.op, i.args[0].Type(), i.args[0].operand(), i.typ)
	case OpCtPop:
		fmt.Fprintf(&r, "call %s @llvm.ctpop.%s(%s %s)", i.typ, i.typ,
			i.args[0].Type(), i.args[0].operand())
	default:
		fmt.Fprintf(&r, "%s %s %s, %s", i.op, i.typ, i.args[0].operand(), i.args[1].operand())
	}
	//
	return r.String()
}
