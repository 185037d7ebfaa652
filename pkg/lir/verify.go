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
	"github.com/pkg/errors"
)

// Verify checks every function of this module for structural
// well-formedness.
func (m *Module) Verify() error {
	seen := make(map[string]bool)
	//
	for _, f := range m.funcs {
		if seen[f.name] {
			return errors.Errorf("duplicate function \"%s\"", f.name)
		}
		//
		seen[f.name] = true
		//
		if err := f.Verify(); err != nil {
			return errors.Wrapf(err, "function \"%s\"", f.name)
		}
	}
	//
	return nil
}

// Verify checks this function for structural well-formedness: unique value
// names, operands defined before use, operand widths consistent with each
// opcode, and a return matching the declared return type.
func (f *Function) Verify() error {
	var (
		names   = make(map[string]bool)
		defined = make(map[Value]bool)
	)
	//
	for _, p := range f.params {
		if p.name == "" {
			return errors.New("unnamed parameter")
		} else if names[p.name] {
			return errors.Errorf("duplicate value name \"%s\"", p.name)
		}
		//
		names[p.name] = true
		defined[p] = true
	}
	//
	for _, instr := range f.instrs {
		if instr.name == "" {
			return errors.New("unnamed instruction")
		} else if names[instr.name] {
			return errors.Errorf("duplicate value name \"%s\"", instr.name)
		}
		//
		names[instr.name] = true
		//
		for _, arg := range instr.args {
			if err := checkOperand(arg, defined); err != nil {
				return errors.Wrapf(err, "operand of %%%s", instr.name)
			}
		}
		//
		if err := checkWidths(instr); err != nil {
			return errors.Wrapf(err, "%%%s", instr.name)
		}
		//
		defined[instr] = true
	}
	//
	if f.ret == nil {
		return errors.New("missing return")
	} else if err := checkOperand(f.ret, defined); err != nil {
		return errors.Wrap(err, "return value")
	} else if f.ret.Type() != f.retType {
		return errors.Errorf("return width %d does not match declared %d",
			f.ret.Type().Width(), f.retType.Width())
	}
	//
	return nil
}

// checkOperand ensures an operand is a constant, poison, or a value defined
// earlier in this function.
func checkOperand(v Value, defined map[Value]bool) error {
	switch v := v.(type) {
	case *Const, *Poison:
		return nil
	case *Param:
		if !defined[v] {
			return errors.Errorf("foreign parameter \"%s\"", v.name)
		}
	case *Instr:
		if !defined[v] {
			return errors.Errorf("use of \"%s\" before definition", v.name)
		}
	default:
		return errors.Errorf("unknown value %v", v)
	}
	//
	return nil
}

// checkWidths ensures the operand and result widths of an instruction are
// consistent with its opcode.
func checkWidths(instr *Instr) error {
	args := instr.args
	//
	switch {
	case instr.op.IsBinary():
		if len(args) != 2 {
			return errors.Errorf("%s expects 2 operands, got %d", instr.op, len(args))
		} else if args[0].Type() != args[1].Type() || args[0].Type() != instr.typ {
			return errors.Errorf("inconsistent widths for %s", instr.op)
		}
	case instr.op == OpICmp:
		if len(args) != 2 {
			return errors.Errorf("icmp expects 2 operands, got %d", len(args))
		} else if args[0].Type() != args[1].Type() {
			return errors.Errorf("inconsistent operand widths for icmp")
		} else if instr.typ.Width() != 1 {
			return errors.Errorf("icmp result width %d", instr.typ.Width())
		}
	case instr.op == OpSelect:
		if len(args) != 3 {
			return errors.Errorf("select expects 3 operands, got %d", len(args))
		} else if args[0].Type().Width() != 1 {
			return errors.Errorf("select condition width %d", args[0].Type().Width())
		} else if args[1].Type() != args[2].Type() || args[1].Type() != instr.typ {
			return errors.Errorf("inconsistent widths for select")
		}
	case instr.op == OpZExt:
		if len(args) != 1 {
			return errors.Errorf("zext expects 1 operand, got %d", len(args))
		} else if instr.typ.Width() <= args[0].Type().Width() {
			return errors.Errorf("zext does not widen (%s to %s)", args[0].Type(), instr.typ)
		}
	case instr.op == OpTrunc:
		if len(args) != 1 {
			return errors.Errorf("trunc expects 1 operand, got %d", len(args))
		} else if instr.typ.Width() >= args[0].Type().Width() {
			return errors.Errorf("trunc does not narrow (%s to %s)", args[0].Type(), instr.typ)
		}
	case instr.op == OpCtPop:
		if len(args) != 1 {
			return errors.Errorf("ctpop expects 1 operand, got %d", len(args))
		} else if args[0].Type() != instr.typ {
			return errors.Errorf("inconsistent widths for ctpop")
		}
	}
	//
	return nil
}
