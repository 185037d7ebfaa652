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

import (
	"math/big"
	"strings"
	"testing"

	"github.com/consensys/go-netlift/pkg/lir"
	"github.com/consensys/go-netlift/pkg/rtl"
)

// testModule eases construction of small netlists.
type testModule struct {
	mod *rtl.Module
}

func newTestModule(name string) *testModule {
	return &testModule{rtl.NewModule(name)}
}

func (tm *testModule) input(name string, width int) *rtl.Wire {
	w := tm.mod.NewWire(name, width)
	w.PortInput = true
	tm.mod.MarkPort(w)
	//
	return w
}

func (tm *testModule) output(name string, width int) *rtl.Wire {
	w := tm.mod.NewWire(name, width)
	w.PortOutput = true
	tm.mod.MarkPort(w)
	//
	return w
}

// cell declares a cell with standard width parameters inferred from its
// connections.
func (tm *testModule) cell(name, ctype string, conns map[string]rtl.SigSpec) *rtl.Cell {
	c := tm.mod.NewCell(name, ctype)
	//
	for port, sig := range conns {
		c.SetPort(port, sig)
		//
		switch port {
		case rtl.PortA:
			c.Parameters[rtl.ParamAWidth] = rtl.ConstOfUint(uint64(sig.Width()), 32)
			c.Parameters[rtl.ParamASigned] = rtl.ConstOfUint(0, 1)
		case rtl.PortB:
			c.Parameters[rtl.ParamBWidth] = rtl.ConstOfUint(uint64(sig.Width()), 32)
			c.Parameters[rtl.ParamBSigned] = rtl.ConstOfUint(0, 1)
		case rtl.PortS:
			c.Parameters[rtl.ParamSWidth] = rtl.ConstOfUint(uint64(sig.Width()), 32)
		case rtl.PortY:
			c.Parameters[rtl.ParamYWidth] = rtl.ConstOfUint(uint64(sig.Width()), 32)
		}
	}
	//
	return c
}

func generate(t *testing.T, tm *testModule, target *rtl.Wire) *lir.Function {
	t.Helper()
	//
	g := NewGenerator(DefaultOptions())
	//
	fn, err := g.Generate(tm.mod, target, "")
	if err != nil {
		t.Fatal(err)
	}
	//
	return fn
}

func check_Lift(t *testing.T, fn *lir.Function, args []uint64, expected uint64) {
	t.Helper()
	//
	values := make([]*big.Int, len(args))
	for i, a := range args {
		values[i] = new(big.Int).SetUint64(a)
	}
	//
	result, err := fn.Eval(values...)
	if err != nil {
		t.Fatal(err)
	}
	//
	if result.Uint64() != expected {
		t.Errorf("function returned %#x, expected %#x", result.Uint64(), expected)
	}
}

func Test_Lift_01(t *testing.T) {
	// Identity: y = a.
	tm := newTestModule("identity")
	a := tm.input("a", 4)
	y := tm.output("y", 4)
	tm.mod.Connect(rtl.SigOfWire(y), rtl.SigOfWire(a))
	//
	fn := generate(t, tm, y)
	//
	if len(fn.Params()) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(fn.Params()))
	}
	//
	check_Lift(t, fn, []uint64{0b1011}, 0b1011)
}

func Test_Lift_02(t *testing.T) {
	// Constant: y = 0xA5.
	tm := newTestModule("constant")
	y := tm.output("y", 8)
	tm.mod.Connect(rtl.SigOfWire(y), rtl.SigOfUint(0xA5, 8))
	//
	fn := generate(t, tm, y)
	//
	if len(fn.Params()) != 0 {
		t.Fatalf("expected no parameters, got %d", len(fn.Params()))
	}
	//
	check_Lift(t, fn, nil, 0xA5)
}

func Test_Lift_03(t *testing.T) {
	// Adder: y = a + b.
	tm := newTestModule("adder")
	a := tm.input("a", 8)
	b := tm.input("b", 8)
	y := tm.output("y", 8)
	//
	tm.cell("$add$1", "$add", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortY: rtl.SigOfWire(y),
	})
	//
	fn := generate(t, tm, y)
	check_Lift(t, fn, []uint64{0x0F, 0x01}, 0x10)
	check_Lift(t, fn, []uint64{0xFF, 0x01}, 0x00)
}

func Test_Lift_04(t *testing.T) {
	// Mux: y = s ? a : b.
	tm := newTestModule("mux")
	a := tm.input("a", 4)
	b := tm.input("b", 4)
	s := tm.input("s", 1)
	y := tm.output("y", 4)
	//
	c := tm.cell("$mux$1", "$mux", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortS: rtl.SigOfWire(s),
		rtl.PortY: rtl.SigOfWire(y),
	})
	c.Parameters[rtl.ParamWidth] = rtl.ConstOfUint(4, 32)
	// A set select picks A.
	fn := generate(t, tm, y)
	check_Lift(t, fn, []uint64{0x3, 0xC, 1}, 0x3)
	check_Lift(t, fn, []uint64{0x3, 0xC, 0}, 0xC)
}

func Test_Lift_05(t *testing.T) {
	// Reduce-xor: y = parity(a).
	tm := newTestModule("parity")
	a := tm.input("a", 5)
	y := tm.output("y", 1)
	//
	tm.cell("$reduce_xor$1", "$reduce_xor", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortY: rtl.SigOfWire(y),
	})
	//
	fn := generate(t, tm, y)
	check_Lift(t, fn, []uint64{0b10110}, 1)
	check_Lift(t, fn, []uint64{0b11110}, 0)
}

func Test_Lift_06(t *testing.T) {
	// Concatenation: y = {a, b} exercises a two-chunk driver spec.
	tm := newTestModule("concat")
	a := tm.input("a", 4)
	b := tm.input("b", 4)
	y := tm.output("y", 8)
	//
	tm.mod.Connect(rtl.SigOfWire(y),
		rtl.Concat(rtl.SigOfWire(a), rtl.SigOfWire(b)))
	//
	fn := generate(t, tm, y)
	check_Lift(t, fn, []uint64{0x3, 0xC}, 0x3C)
}

func Test_Lift_07(t *testing.T) {
	// Generating twice against one cache yields the identical value.
	tm := newTestModule("twice")
	a := tm.input("a", 8)
	y := tm.output("y", 8)
	//
	tm.cell("$not$1", "$not", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortY: rtl.SigOfWire(y),
	})
	//
	g := NewGenerator(DefaultOptions())
	//
	fn, err := g.Generate(tm.mod, y, "")
	if err != nil {
		t.Fatal(err)
	}
	//
	sig := rtl.SigOfWire(y)
	//
	dSpec, err := g.finder.DriversOf(&sig)
	if err != nil {
		t.Fatal(err)
	}
	//
	v1, err := g.generateValue(&dSpec)
	if err != nil {
		t.Fatal(err)
	}
	//
	v2, err := g.generateValue(&dSpec)
	if err != nil {
		t.Fatal(err)
	}
	//
	if v1 != v2 {
		t.Error("cached generation returned distinct values")
	}
	//
	if fn.Return() != v1 {
		t.Error("returned value not the cached one")
	}
}

func Test_Lift_08(t *testing.T) {
	// Unary and binary cell zoo against a reference computation.
	checks := []struct {
		ctype   string
		binary  bool
		compute func(a, b uint64) uint64
	}{
		{"$not", false, func(a, _ uint64) uint64 { return ^a & 0xFF }},
		{"$pos", false, func(a, _ uint64) uint64 { return a }},
		{"$neg", false, func(a, _ uint64) uint64 { return (-a) & 0xFF }},
		{"$logic_not", false, func(a, _ uint64) uint64 { return b2u(a == 0) }},
		{"$reduce_and", false, func(a, _ uint64) uint64 { return b2u(a == 0xFF) }},
		{"$reduce_or", false, func(a, _ uint64) uint64 { return b2u(a != 0) }},
		{"$reduce_bool", false, func(a, _ uint64) uint64 { return b2u(a != 0) }},
		{"$reduce_xnor", false, func(a, _ uint64) uint64 { return b2u(popcount8(a)%2 == 0) }},
		{"$and", true, func(a, b uint64) uint64 { return a & b }},
		{"$or", true, func(a, b uint64) uint64 { return a | b }},
		{"$xor", true, func(a, b uint64) uint64 { return a ^ b }},
		{"$xnor", true, func(a, b uint64) uint64 { return (^(a ^ b)) & 0xFF }},
		{"$shl", true, func(a, b uint64) uint64 { return shl8(a, b) }},
		{"$sshl", true, func(a, b uint64) uint64 { return shl8(a, b) }},
		{"$shr", true, func(a, b uint64) uint64 { return shr8(a, b) }},
		{"$sshr", true, func(a, b uint64) uint64 { return sshr8(a, b) }},
		{"$logic_and", true, func(a, b uint64) uint64 { return b2u(a != 0 && b != 0) }},
		{"$logic_or", true, func(a, b uint64) uint64 { return b2u(a != 0 || b != 0) }},
		{"$lt", true, func(a, b uint64) uint64 { return b2u(a < b) }},
		{"$le", true, func(a, b uint64) uint64 { return b2u(a <= b) }},
		{"$eq", true, func(a, b uint64) uint64 { return b2u(a == b) }},
		{"$ne", true, func(a, b uint64) uint64 { return b2u(a != b) }},
		{"$ge", true, func(a, b uint64) uint64 { return b2u(a >= b) }},
		{"$gt", true, func(a, b uint64) uint64 { return b2u(a > b) }},
		{"$add", true, func(a, b uint64) uint64 { return (a + b) & 0xFF }},
		{"$sub", true, func(a, b uint64) uint64 { return (a - b) & 0xFF }},
		{"$mul", true, func(a, b uint64) uint64 { return (a * b) & 0xFF }},
		{"$div", true, func(a, b uint64) uint64 { return a / b }},
		{"$mod", true, func(a, b uint64) uint64 { return a % b }},
	}
	//
	inputs := [][2]uint64{{0x00, 0x01}, {0x0F, 0x0F}, {0xA5, 0x03}, {0xFF, 0x07}, {0x80, 0x02}}
	//
	for _, c := range checks {
		width := 8
		//
		if strings.HasPrefix(c.ctype, "$reduce") || strings.HasPrefix(c.ctype, "$logic") ||
			c.ctype == "$lt" || c.ctype == "$le" || c.ctype == "$eq" || c.ctype == "$ne" ||
			c.ctype == "$ge" || c.ctype == "$gt" {
			width = 1
		}
		//
		tm := newTestModule("zoo_" + c.ctype[1:])
		a := tm.input("a", 8)
		y := tm.output("y", width)
		//
		conns := map[string]rtl.SigSpec{
			rtl.PortA: rtl.SigOfWire(a),
			rtl.PortY: rtl.SigOfWire(y),
		}
		//
		var b *rtl.Wire
		//
		if c.binary {
			b = tm.input("b", 8)
			conns[rtl.PortB] = rtl.SigOfWire(b)
		}
		//
		tm.cell("$c$1", c.ctype, conns)
		fn := generate(t, tm, y)
		//
		for _, in := range inputs {
			if (c.ctype == "$div" || c.ctype == "$mod") && in[1] == 0 {
				continue
			}
			//
			args := []uint64{in[0]}
			if c.binary {
				args = append(args, in[1])
			}
			//
			expected := c.compute(in[0], in[1])
			//
			values := make([]*big.Int, len(args))
			for i, arg := range args {
				values[i] = new(big.Int).SetUint64(arg)
			}
			//
			result, err := fn.Eval(values...)
			if err != nil {
				t.Fatalf("%s: %v", c.ctype, err)
			}
			//
			if result.Uint64() != expected {
				t.Errorf("%s(%#x, %#x) = %#x, expected %#x",
					c.ctype, in[0], in[1], result.Uint64(), expected)
			}
		}
	}
}

func Test_Lift_09(t *testing.T) {
	// Reduction with declared Y_WIDTH > 1 zero-extends the result.
	tm := newTestModule("widered")
	a := tm.input("a", 5)
	y := tm.output("y", 4)
	//
	tm.cell("$reduce_xor$1", "$reduce_xor", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortY: rtl.SigOfWire(y),
	})
	//
	fn := generate(t, tm, y)
	check_Lift(t, fn, []uint64{0b10110}, 1)
	check_Lift(t, fn, []uint64{0b11110}, 0)
}

func Test_Lift_10(t *testing.T) {
	// Slices of a cell output recombine correctly: y = {sum[3:0], sum[7:4]}.
	tm := newTestModule("swap")
	a := tm.input("a", 8)
	b := tm.input("b", 8)
	sum := tm.mod.NewWire("sum", 8)
	y := tm.output("y", 8)
	//
	tm.cell("$add$1", "$add", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortY: rtl.SigOfWire(sum),
	})
	//
	tm.mod.Connect(rtl.SigOfWire(y),
		rtl.Concat(rtl.SigOfSlice(sum, 0, 4), rtl.SigOfSlice(sum, 4, 4)))
	//
	fn := generate(t, tm, y)
	// 0x12 + 0x34 = 0x46, swapped = 0x64.
	check_Lift(t, fn, []uint64{0x12, 0x34}, 0x64)
}

func Test_Lift_11(t *testing.T) {
	// A chain of cells through internal wires.
	tm := newTestModule("chain")
	a := tm.input("a", 8)
	b := tm.input("b", 8)
	s := tm.input("s", 1)
	sum := tm.mod.NewWire("sum", 8)
	diff := tm.mod.NewWire("diff", 8)
	y := tm.output("y", 8)
	//
	tm.cell("$add$1", "$add", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortY: rtl.SigOfWire(sum),
	})
	//
	tm.cell("$sub$1", "$sub", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortY: rtl.SigOfWire(diff),
	})
	//
	c := tm.cell("$mux$1", "$mux", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(sum),
		rtl.PortB: rtl.SigOfWire(diff),
		rtl.PortS: rtl.SigOfWire(s),
		rtl.PortY: rtl.SigOfWire(y),
	})
	c.Parameters[rtl.ParamWidth] = rtl.ConstOfUint(8, 32)
	//
	fn := generate(t, tm, y)
	// A set select picks A (the sum).
	check_Lift(t, fn, []uint64{9, 4, 1}, 13)
	check_Lift(t, fn, []uint64{9, 4, 0}, 5)
}

func Test_Lift_12(t *testing.T) {
	// pmux: one-hot select among slices of B, default A.
	tm := newTestModule("pmux")
	a := tm.input("a", 4)
	b0 := tm.input("b0", 4)
	b1 := tm.input("b1", 4)
	s := tm.input("s", 2)
	y := tm.output("y", 4)
	//
	c := tm.cell("$pmux$1", "$pmux", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.Concat(rtl.SigOfWire(b1), rtl.SigOfWire(b0)),
		rtl.PortS: rtl.SigOfWire(s),
		rtl.PortY: rtl.SigOfWire(y),
	})
	c.Parameters[rtl.ParamWidth] = rtl.ConstOfUint(4, 32)
	//
	fn := generate(t, tm, y)
	// No select bit: default A.
	check_Lift(t, fn, []uint64{0xA, 0x1, 0x2, 0b00}, 0xA)
	// One-hot selects.
	check_Lift(t, fn, []uint64{0xA, 0x1, 0x2, 0b01}, 0x1)
	check_Lift(t, fn, []uint64{0xA, 0x1, 0x2, 0b10}, 0x2)
	// Several bits set: the lowest wins.
	check_Lift(t, fn, []uint64{0xA, 0x1, 0x2, 0b11}, 0x1)
}

func Test_Lift_13(t *testing.T) {
	// x-ish constants coerce to zero, or to poison when so configured.
	tm := newTestModule("xish")
	y := tm.output("y", 4)
	tm.mod.Connect(rtl.SigOfWire(y), rtl.SigOfConst(rtl.ConstOfState(rtl.Sx, 4)))
	//
	fn := generate(t, tm, y)
	check_Lift(t, fn, nil, 0)
	//
	opts := DefaultOptions()
	opts.UsePoison = true
	//
	g := NewGenerator(opts)
	//
	fn, err := g.Generate(tm.mod, y, "")
	if err != nil {
		t.Fatal(err)
	}
	//
	if _, ok := fn.Return().(*lir.Poison); !ok {
		t.Error("expected poison return")
	}
}

func Test_Lift_14(t *testing.T) {
	// A combinational cycle through cells is a fatal input error.
	tm := newTestModule("cycle")
	u := tm.mod.NewWire("u", 4)
	v := tm.mod.NewWire("v", 4)
	y := tm.output("y", 4)
	//
	tm.cell("$not$1", "$not", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(u),
		rtl.PortY: rtl.SigOfWire(v),
	})
	//
	tm.cell("$not$2", "$not", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(v),
		rtl.PortY: rtl.SigOfWire(u),
	})
	//
	tm.mod.Connect(rtl.SigOfWire(y), rtl.SigOfWire(u))
	//
	g := NewGenerator(DefaultOptions())
	//
	if _, err := g.Generate(tm.mod, y, ""); err == nil {
		t.Error("cycle not detected")
	} else if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("unexpected error %v", err)
	}
}

func Test_Lift_15(t *testing.T) {
	// The same generator serves several targets of one module.
	tm := newTestModule("multi")
	a := tm.input("a", 8)
	b := tm.input("b", 8)
	y1 := tm.output("y1", 8)
	y2 := tm.output("y2", 8)
	//
	tm.cell("$add$1", "$add", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortY: rtl.SigOfWire(y1),
	})
	//
	tm.cell("$xor$1", "$xor", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfWire(b),
		rtl.PortY: rtl.SigOfWire(y2),
	})
	//
	g := NewGenerator(DefaultOptions())
	//
	fn1, err := g.Generate(tm.mod, y1, "f1")
	if err != nil {
		t.Fatal(err)
	}
	//
	fn2, err := g.Generate(tm.mod, y2, "f2")
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Lift(t, fn1, []uint64{3, 5}, 8)
	check_Lift(t, fn2, []uint64{3, 5}, 6)
}

func Test_Lift_16(t *testing.T) {
	// Simplification folds and(x, 0) away entirely.
	tm := newTestModule("simplify")
	a := tm.input("a", 8)
	y := tm.output("y", 8)
	//
	tm.cell("$and$1", "$and", map[string]rtl.SigSpec{
		rtl.PortA: rtl.SigOfWire(a),
		rtl.PortB: rtl.SigOfUint(0, 8),
		rtl.PortY: rtl.SigOfWire(y),
	})
	//
	fn := generate(t, tm, y)
	//
	if len(fn.Instrs()) != 0 {
		t.Errorf("and with zero emitted %d instructions", len(fn.Instrs()))
	}
	//
	check_Lift(t, fn, []uint64{0xFF}, 0)
}

// ===================================================================
// Test Helpers
// ===================================================================

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	//
	return 0
}

func popcount8(a uint64) int {
	count := 0
	//
	for i := 0; i < 8; i++ {
		if a&(1<<i) != 0 {
			count++
		}
	}
	//
	return count
}

func shl8(a, b uint64) uint64 {
	if b >= 8 {
		return 0
	}
	//
	return (a << b) & 0xFF
}

func shr8(a, b uint64) uint64 {
	if b >= 8 {
		return 0
	}
	//
	return (a & 0xFF) >> b
}

func sshr8(a, b uint64) uint64 {
	fill := uint64(0)
	//
	if a&0x80 != 0 {
		fill = 0xFF
	}
	//
	if b >= 8 {
		return fill
	}
	//
	return ((a >> b) | (fill << (8 - b))) & 0xFF
}
