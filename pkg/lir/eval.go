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
	"math/big"

	"github.com/pkg/errors"
)

// Eval evaluates this function on the given arguments, one per parameter in
// positional order.  Arguments are truncated to their parameter widths.
// Poison values evaluate as zero, mirroring the coercion applied to unknown
// inputs when poison is not in use.
func (f *Function) Eval(args ...*big.Int) (*big.Int, error) {
	if len(args) != len(f.params) {
		return nil, errors.Errorf("expected %d arguments, got %d", len(f.params), len(args))
	} else if f.ret == nil {
		return nil, errors.New("missing return")
	}
	//
	env := make(map[Value]*big.Int)
	//
	for i, p := range f.params {
		env[p] = new(big.Int).And(args[i], mask(p.typ.Width()))
	}
	//
	for _, instr := range f.instrs {
		val, err := instr.eval(env)
		if err != nil {
			return nil, errors.Wrapf(err, "%%%s", instr.name)
		}
		//
		env[instr] = val
	}
	//
	return operandValue(f.ret, env)
}

func operandValue(v Value, env map[Value]*big.Int) (*big.Int, error) {
	switch v := v.(type) {
	case *Const:
		return v.value, nil
	case *Poison:
		return big.NewInt(0), nil
	default:
		if val, ok := env[v]; ok {
			return val, nil
		}
	}
	//
	return nil, errors.Errorf("undefined value %s", v.operand())
}

//nolint:gocyclo
func (i *Instr) eval(env map[Value]*big.Int) (*big.Int, error) {
	var (
		w    = i.typ.Width()
		vals = make([]*big.Int, len(i.args))
	)
	//
	for j, arg := range i.args {
		val, err := operandValue(arg, env)
		if err != nil {
			return nil, err
		}
		//
		vals[j] = val
	}
	//
	r := new(big.Int)
	//
	switch i.op {
	case OpAnd:
		r.And(vals[0], vals[1])
	case OpOr:
		r.Or(vals[0], vals[1])
	case OpXor:
		r.Xor(vals[0], vals[1])
	case OpAdd:
		r.Add(vals[0], vals[1])
	case OpSub:
		r.Sub(vals[0], vals[1])
	case OpMul:
		r.Mul(vals[0], vals[1])
	case OpUDiv:
		if vals[1].Sign() == 0 {
			return nil, errors.New("division by zero")
		}
		//
		r.Div(vals[0], vals[1])
	case OpURem:
		if vals[1].Sign() == 0 {
			return nil, errors.New("division by zero")
		}
		//
		r.Mod(vals[0], vals[1])
	case OpShl, OpLShr, OpAShr:
		return evalShift(i.op, w, vals[0], vals[1]), nil
	case OpICmp:
		return evalICmp(i.pred, i.args[0].Type().Width(), vals[0], vals[1]), nil
	case OpSelect:
		if vals[0].Sign() != 0 {
			return vals[1], nil
		}
		//
		return vals[2], nil
	case OpZExt, OpTrunc:
		r.Set(vals[0])
	case OpCtPop:
		count := 0
		//
		for j := 0; j < vals[0].BitLen(); j++ {
			if vals[0].Bit(j) == 1 {
				count++
			}
		}
		//
		r.SetInt64(int64(count))
	}
	//
	return r.And(r, mask(w)), nil
}

// evalShift evaluates a shift of a w-bit value.  Out-of-range shift amounts
// yield zero (or sign fill for arithmetic shifts), matching the folding
// applied to literal shifts.
func evalShift(op Op, w int, x, y *big.Int) *big.Int {
	var (
		negative = op == OpAShr && x.Bit(w-1) == 1
		r        = new(big.Int)
	)
	//
	if !y.IsUint64() || y.Uint64() >= uint64(w) {
		if negative {
			return mask(w)
		}
		//
		return r
	}
	//
	amount := uint(y.Uint64())
	//
	switch op {
	case OpShl:
		r.Lsh(x, amount)
	case OpLShr:
		r.Rsh(x, amount)
	case OpAShr:
		r.Rsh(x, amount)
		//
		if negative {
			fill := new(big.Int).Lsh(mask(int(amount)), uint(w)-amount)
			r.Or(r, fill)
		}
	}
	//
	return r.And(r, mask(w))
}

func evalICmp(pred Pred, w int, x, y *big.Int) *big.Int {
	var (
		cmp    = x.Cmp(y)
		result bool
	)
	//
	if pred >= PredSLT {
		cmp = signedBig(x, w).Cmp(signedBig(y, w))
	}
	//
	switch pred {
	case PredEQ:
		result = cmp == 0
	case PredNE:
		result = cmp != 0
	case PredULT, PredSLT:
		result = cmp < 0
	case PredULE, PredSLE:
		result = cmp <= 0
	case PredUGT, PredSGT:
		result = cmp > 0
	case PredUGE, PredSGE:
		result = cmp >= 0
	}
	//
	if result {
		return big.NewInt(1)
	}
	//
	return big.NewInt(0)
}

// signedBig reinterprets a canonical unsigned w-bit value as signed.
func signedBig(x *big.Int, w int) *big.Int {
	if x.Bit(w-1) == 1 {
		m := new(big.Int).Lsh(big.NewInt(1), uint(w))
		return new(big.Int).Sub(x, m)
	}
	//
	return x
}
