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
package driver

import (
	"strings"
	"testing"

	"github.com/consensys/go-netlift/pkg/rtl"
)

// buildAdder constructs a module with one $add cell driving y from inputs a
// and b.
func buildAdder(width int) (*rtl.Module, *rtl.Cell) {
	m := rtl.NewModule("adder")
	//
	a := m.NewWire("a", width)
	a.PortInput = true
	m.MarkPort(a)
	//
	b := m.NewWire("b", width)
	b.PortInput = true
	m.MarkPort(b)
	//
	y := m.NewWire("y", width)
	y.PortOutput = true
	m.MarkPort(y)
	//
	cell := m.NewCell("$add$1", "$add")
	cell.Parameters[rtl.ParamAWidth] = rtl.ConstOfUint(uint64(width), 32)
	cell.Parameters[rtl.ParamBWidth] = rtl.ConstOfUint(uint64(width), 32)
	cell.Parameters[rtl.ParamYWidth] = rtl.ConstOfUint(uint64(width), 32)
	cell.SetPort(rtl.PortA, rtl.SigOfWire(a))
	cell.SetPort(rtl.PortB, rtl.SigOfWire(b))
	cell.SetPort(rtl.PortY, rtl.SigOfWire(y))
	//
	return m, cell
}

func Test_Finder_01(t *testing.T) {
	m, cell := buildAdder(8)
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	// Every bit of y is produced by the cell, merged into one chunk.
	spec, err := f.DriverOfWire(m.Wire("y"))
	if err != nil {
		t.Fatal(err)
	}
	//
	if spec.Width() != 8 {
		t.Errorf("driver spec width %d", spec.Width())
	}
	//
	if !spec.IsCell() {
		t.Fatalf("expected whole cell output, got %s", spec.String())
	}
	//
	if c, port := spec.AsCell(); c != cell || port != rtl.PortY {
		t.Error("wrong producing cell")
	}
}

func Test_Finder_02(t *testing.T) {
	// Input ports drive themselves.
	m, _ := buildAdder(8)
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	spec, err := f.DriverOfWire(m.Wire("a"))
	if err != nil {
		t.Fatal(err)
	}
	//
	if !spec.IsWire() || spec.AsWire() != m.Wire("a") {
		t.Errorf("input drivers disagree: %s", spec.String())
	}
}

func Test_Finder_03(t *testing.T) {
	// Constant bits resolve to literal chunks.
	m := rtl.NewModule("m")
	//
	y := m.NewWire("y", 4)
	y.PortOutput = true
	m.MarkPort(y)
	//
	m.Connect(rtl.SigOfWire(y), rtl.SigOfUint(0xA, 4))
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	spec, err := f.DriverOfWire(y)
	if err != nil {
		t.Fatal(err)
	}
	//
	if !spec.IsFullyConst() {
		t.Fatalf("expected constant drivers, got %s", spec.String())
	}
	//
	if spec.AsConst().AsUint() != 0xA {
		t.Errorf("constant drivers read %x", spec.AsConst().AsUint())
	}
}

func Test_Finder_04(t *testing.T) {
	// Alias chains through connections resolve transitively.
	m := rtl.NewModule("m")
	//
	a := m.NewWire("a", 4)
	a.PortInput = true
	m.MarkPort(a)
	//
	mid := m.NewWire("mid", 4)
	y := m.NewWire("y", 4)
	y.PortOutput = true
	m.MarkPort(y)
	//
	m.Connect(rtl.SigOfWire(mid), rtl.SigOfWire(a))
	m.Connect(rtl.SigOfWire(y), rtl.SigOfWire(mid))
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	spec, err := f.DriverOfWire(y)
	if err != nil {
		t.Fatal(err)
	}
	//
	if !spec.IsWire() || spec.AsWire() != a {
		t.Errorf("alias chain resolved to %s", spec.String())
	}
}

func Test_Finder_05(t *testing.T) {
	// Heterogeneous concatenations split into maximal chunks.
	m := rtl.NewModule("m")
	//
	a := m.NewWire("a", 4)
	a.PortInput = true
	m.MarkPort(a)
	//
	b := m.NewWire("b", 4)
	b.PortInput = true
	m.MarkPort(b)
	//
	y := m.NewWire("y", 8)
	y.PortOutput = true
	m.MarkPort(y)
	// y = {a, b}
	m.Connect(rtl.SigOfWire(y), rtl.Concat(rtl.SigOfWire(a), rtl.SigOfWire(b)))
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	spec, err := f.DriverOfWire(y)
	if err != nil {
		t.Fatal(err)
	}
	//
	chunks := spec.Chunks()
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d (%s)", len(chunks), spec.String())
	}
	//
	if chunks[0].Wire != b || chunks[1].Wire != a {
		t.Error("chunk producers disagree")
	}
}

func Test_Finder_06(t *testing.T) {
	// A bit driven twice is an input error.
	m := rtl.NewModule("m")
	//
	a := m.NewWire("a", 4)
	a.PortInput = true
	m.MarkPort(a)
	//
	y := m.NewWire("y", 4)
	y.PortOutput = true
	m.MarkPort(y)
	//
	m.Connect(rtl.SigOfWire(y), rtl.SigOfWire(a))
	m.Connect(rtl.SigOfSlice(y, 1, 1), rtl.SigOfSlice(a, 0, 1))
	//
	f := NewFinder()
	//
	err := f.Build(m)
	if err == nil || !strings.Contains(err.Error(), "multiple drivers") {
		t.Errorf("expected multiple-driver error, got %v", err)
	}
}

func Test_Finder_07(t *testing.T) {
	// A bit with no driver is an input error at lookup.
	m := rtl.NewModule("m")
	//
	y := m.NewWire("y", 4)
	y.PortOutput = true
	m.MarkPort(y)
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	_, err := f.DriverOfWire(y)
	if err == nil || !strings.Contains(err.Error(), "no driver") {
		t.Errorf("expected missing-driver error, got %v", err)
	}
}

func Test_Finder_08(t *testing.T) {
	// A connection cycle is detected.
	m := rtl.NewModule("m")
	//
	u := m.NewWire("u", 1)
	v := m.NewWire("v", 1)
	//
	m.Connect(rtl.SigOfWire(u), rtl.SigOfWire(v))
	m.Connect(rtl.SigOfWire(v), rtl.SigOfWire(u))
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	sig := rtl.SigOfWire(u)
	//
	_, err := f.DriversOf(&sig)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got %v", err)
	}
}

func Test_Finder_09(t *testing.T) {
	// Merging stops at producer boundaries but joins contiguous slices.
	m := rtl.NewModule("m")
	//
	a := m.NewWire("a", 8)
	a.PortInput = true
	m.MarkPort(a)
	//
	y := m.NewWire("y", 8)
	y.PortOutput = true
	m.MarkPort(y)
	// Two separate connections covering contiguous halves of the same wire.
	m.Connect(rtl.SigOfSlice(y, 0, 4), rtl.SigOfSlice(a, 0, 4))
	m.Connect(rtl.SigOfSlice(y, 4, 4), rtl.SigOfSlice(a, 4, 4))
	//
	f := NewFinder()
	if err := f.Build(m); err != nil {
		t.Fatal(err)
	}
	//
	spec, err := f.DriverOfWire(y)
	if err != nil {
		t.Fatal(err)
	}
	//
	if !spec.IsWire() {
		t.Errorf("contiguous slices did not merge: %s", spec.String())
	}
}
