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
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-netlift/pkg/lir"
	"github.com/consensys/go-netlift/pkg/rtl"
)

// generateInputValue finds or creates the value driving the given input port
// of the given cell.
func (g *Generator) generateInputValue(cell *rtl.Cell, port string) (lir.Value, error) {
	if !cell.HasPort(port) {
		return nil, errors.Errorf("cell \"%s\" has no port \"%s\"", cell.Name, port)
	}
	//
	sig := cell.Port(port)
	//
	dSpec, err := g.finder.DriversOf(&sig)
	if err != nil {
		return nil, err
	}
	//
	return g.generateValue(&dSpec)
}

// generateCellOutputValue creates the value of the given output port of the
// given cell.  The caller is responsible for caching the result.
func (g *Generator) generateCellOutputValue(cell *rtl.Cell, port string) (lir.Value, error) {
	if port != rtl.PortY {
		return nil, errors.Errorf("cell \"%s\" drives unsupported output port \"%s\"",
			cell.Name, port)
	}
	// The driver graph must be acyclic; a cell reached from its own fan-in
	// is a fatal input error.
	if g.active[cell] {
		return nil, errors.Errorf("combinational cycle through cell \"%s\"", cell.Name)
	}
	//
	g.active[cell] = true
	defer delete(g.active, cell)
	//
	var (
		val lir.Value
		err error
	)
	//
	switch cell.NumPorts() {
	case 2:
		val, err = g.generateUnaryCellValue(cell)
	case 3:
		val, err = g.generateBinaryCellValue(cell)
	case 4:
		switch cell.Type {
		case "$mux":
			val, err = g.generateMuxCellValue(cell)
		case "$pmux":
			val, err = g.generatePmuxCellValue(cell)
		default:
			err = errors.Errorf("unsupported cell type %s (cell \"%s\")", cell.Type, cell.Name)
		}
	default:
		err = errors.Errorf("unsupported cell type %s with %d connections (cell \"%s\")",
			cell.Type, cell.NumPorts(), cell.Name)
	}
	//
	if err != nil {
		return nil, err
	}
	//
	if g.opts.CellBasedValueNames {
		g.nameValue(val, cell.Name)
	}
	//
	return val, nil
}

// portWidth returns the connected width of a cell port, warning when it
// disagrees with the corresponding declared parameter.
func (g *Generator) portWidth(cell *rtl.Cell, port, param string) int {
	sig := cell.Port(port)
	width := sig.Width()
	//
	if cell.HasParam(param) && cell.ParamInt(param) != width {
		log.Warnf("mismatched %s (%d) and %s width (%d) for %s cell \"%s\"",
			param, cell.ParamInt(param), port, width, cell.Type, cell.Name)
		//
		width = max(width, cell.ParamInt(param))
	}
	//
	return width
}

// extendTo zero-extends or truncates a value to the given width.  Sign extension
// honouring A_SIGNED/B_SIGNED is a noted extension point.
func (g *Generator) extendTo(val lir.Value, width int) lir.Value {
	return g.builder.CreateZExtOrTrunc(val, lir.IntType(width))
}

// boolValue reduces a value to one bit by comparison against zero.
func (g *Generator) boolValue(val lir.Value) lir.Value {
	if val.Type().Width() == 1 {
		return val
	}
	//
	return g.builder.CreateICmpNE(val, g.builder.Zero(val.Type().Width()))
}

// generateUnaryCellValue lowers cells with one input port (A) and one output
// port (Y).
func (g *Generator) generateUnaryCellValue(cell *rtl.Cell) (lir.Value, error) {
	var (
		b      = g.builder
		widthA = g.portWidth(cell, rtl.PortA, rtl.ParamAWidth)
		widthY = g.portWidth(cell, rtl.PortY, rtl.ParamYWidth)
	)
	//
	log.Debugf("generating %s cell \"%s\" with Y width %d", cell.Type, cell.Name, widthY)
	//
	valA, err := g.generateInputValue(cell, rtl.PortA)
	if err != nil {
		return nil, err
	}
	//
	switch cell.Type {
	case "$not", "$pos", "$neg":
		// Elementwise cells work at the widest of the A/Y widths.
		working := max(widthA, widthY, valA.Type().Width())
		valA = g.extendTo(valA, working)
		//
		var val lir.Value
		//
		switch cell.Type {
		case "$not":
			val = b.CreateNot(valA)
		case "$pos":
			val = valA
		default:
			val = b.CreateNeg(valA)
		}
		//
		return g.extendTo(val, widthY), nil
	case "$reduce_and":
		width := valA.Type().Width()
		return g.reduceResult(b.CreateICmpEQ(valA, b.AllOnes(width)), widthY), nil
	case "$reduce_or", "$reduce_bool":
		return g.reduceResult(g.boolValue(valA), widthY), nil
	case "$reduce_xor":
		// Parity: the low bit of the population count.
		popcnt := b.CreateCtPop(valA)
		return g.reduceResult(g.extendTo(popcnt, 1), widthY), nil
	case "$reduce_xnor":
		popcnt := b.CreateCtPop(valA)
		return g.reduceResult(b.CreateNot(g.extendTo(popcnt, 1)), widthY), nil
	case "$logic_not":
		width := valA.Type().Width()
		return g.reduceResult(b.CreateICmpEQ(valA, b.Zero(width)), widthY), nil
	}
	//
	return nil, errors.Errorf("unsupported unary cell type %s (cell \"%s\")",
		cell.Type, cell.Name)
}

// reduceResult zero-extends a 1-bit reduction result to the declared output
// width; only the least significant bit ever varies.
func (g *Generator) reduceResult(val lir.Value, widthY int) lir.Value {
	return g.extendTo(val, widthY)
}

// generateBinaryCellValue lowers cells with two input ports (A, B) and one
// output port (Y).
//
//nolint:gocyclo
func (g *Generator) generateBinaryCellValue(cell *rtl.Cell) (lir.Value, error) {
	var (
		b      = g.builder
		widthA = g.portWidth(cell, rtl.PortA, rtl.ParamAWidth)
		widthB = g.portWidth(cell, rtl.PortB, rtl.ParamBWidth)
		widthY = g.portWidth(cell, rtl.PortY, rtl.ParamYWidth)
	)
	//
	log.Debugf("generating %s cell \"%s\" with Y width %d", cell.Type, cell.Name, widthY)
	//
	if widthA != widthB {
		log.Warnf("mismatched A/B widths for %s cell \"%s\"", cell.Type, cell.Name)
	}
	//
	if widthY != widthA {
		log.Warnf("mismatched A/Y widths for %s cell \"%s\"", cell.Type, cell.Name)
	}
	//
	valA, err := g.generateInputValue(cell, rtl.PortA)
	if err != nil {
		return nil, err
	}
	//
	valB, err := g.generateInputValue(cell, rtl.PortB)
	if err != nil {
		return nil, err
	}
	// Normalise both inputs to the largest of the declared and generated
	// widths.  Sign extension honouring A_SIGNED/B_SIGNED is a noted
	// extension point.
	working := max(widthA, widthB, widthY, valA.Type().Width(), valB.Type().Width())
	valA = g.extendTo(valA, working)
	valB = g.extendTo(valB, working)
	//
	var val lir.Value
	//
	switch cell.Type {
	case "$and":
		val = g.andValue(valA, valB)
	case "$or":
		val = g.orValue(valA, valB)
	case "$xor":
		val = b.CreateXor(valA, valB)
	case "$xnor":
		val = b.CreateNot(b.CreateXor(valA, valB))
	case "$shl", "$sshl":
		val = b.CreateShl(valA, valB)
	case "$shr":
		val = b.CreateLShr(valA, valB)
	case "$sshr":
		val = b.CreateAShr(valA, valB)
	case "$logic_and":
		val = g.reduceResult(g.andValue(g.boolValue(valA), g.boolValue(valB)), widthY)
		return val, nil
	case "$logic_or":
		val = g.reduceResult(g.orValue(g.boolValue(valA), g.boolValue(valB)), widthY)
		return val, nil
	case "$lt":
		return g.reduceResult(b.CreateICmpULT(valA, valB), widthY), nil
	case "$le":
		return g.reduceResult(b.CreateICmpULE(valA, valB), widthY), nil
	case "$eq":
		return g.reduceResult(b.CreateICmpEQ(valA, valB), widthY), nil
	case "$ne":
		return g.reduceResult(b.CreateICmpNE(valA, valB), widthY), nil
	case "$ge":
		return g.reduceResult(b.CreateICmpUGE(valA, valB), widthY), nil
	case "$gt":
		return g.reduceResult(b.CreateICmpUGT(valA, valB), widthY), nil
	case "$add":
		val = b.CreateAdd(valA, valB)
	case "$sub":
		val = b.CreateSub(valA, valB)
	case "$mul":
		val = b.CreateMul(valA, valB)
	case "$div":
		val = b.CreateUDiv(valA, valB)
	case "$mod":
		val = b.CreateURem(valA, valB)
	default:
		return nil, errors.Errorf("unsupported binary cell type %s (cell \"%s\")",
			cell.Type, cell.Name)
	}
	//
	return g.extendTo(val, widthY), nil
}

// andValue emits a bitwise conjunction, applying algebraic identities when
// so configured.
func (g *Generator) andValue(x, y lir.Value) lir.Value {
	if g.opts.SimplifyAndOrGates {
		if c, ok := x.(*lir.Const); ok {
			if c.IsZero() {
				return c
			} else if c.IsAllOnes() {
				return y
			}
		}
		//
		if c, ok := y.(*lir.Const); ok {
			if c.IsZero() {
				return c
			} else if c.IsAllOnes() {
				return x
			}
		}
	}
	//
	return g.builder.CreateAnd(x, y)
}

// orValue emits a bitwise disjunction, applying algebraic identities when so
// configured.
func (g *Generator) orValue(x, y lir.Value) lir.Value {
	if g.opts.SimplifyAndOrGates {
		if c, ok := x.(*lir.Const); ok {
			if c.IsZero() {
				return y
			} else if c.IsAllOnes() {
				return c
			}
		}
		//
		if c, ok := y.(*lir.Const); ok {
			if c.IsZero() {
				return x
			} else if c.IsAllOnes() {
				return c
			}
		}
	}
	//
	return g.builder.CreateOr(x, y)
}

// generateMuxCellValue lowers the two-way multiplexer.
func (g *Generator) generateMuxCellValue(cell *rtl.Cell) (lir.Value, error) {
	var (
		b      = g.builder
		sigA   = cell.Port(rtl.PortA)
		sigB   = cell.Port(rtl.PortB)
		sigS   = cell.Port(rtl.PortS)
		widthY = g.portWidth(cell, rtl.PortY, rtl.ParamWidth)
	)
	//
	log.Debugf("generating $mux cell \"%s\" with width %d", cell.Name, widthY)
	//
	if sigA.Width() != widthY || sigB.Width() != widthY {
		log.Warnf("mismatched A/B/Y widths for $mux cell \"%s\"", cell.Name)
	}
	//
	if sigS.Width() != 1 {
		log.Warnf("$mux cell \"%s\" has select width %d", cell.Name, sigS.Width())
	}
	//
	valA, err := g.generateInputValue(cell, rtl.PortA)
	if err != nil {
		return nil, err
	}
	//
	valB, err := g.generateInputValue(cell, rtl.PortB)
	if err != nil {
		return nil, err
	}
	//
	valS, err := g.generateInputValue(cell, rtl.PortS)
	if err != nil {
		return nil, err
	}
	//
	working := max(widthY, valA.Type().Width(), valB.Type().Width())
	valA = g.extendTo(valA, working)
	valB = g.extendTo(valB, working)
	valS = g.boolValue(valS)
	//
	if g.opts.SimplifyMuxes && valA == valB {
		return g.extendTo(valA, widthY), nil
	}
	//
	return g.extendTo(b.CreateSelect(valS, valA, valB), widthY), nil
}

// generatePmuxCellValue lowers the one-hot parallel multiplexer: B is the
// concatenation of S_WIDTH candidate vectors of width WIDTH, selected by the
// corresponding bit of S, with A as the default when S is all zeros.  A
// select with several bits set is not an intended input; it is lowered as a
// cascade with the lowest set bit winning, and warned about since
// cardinality cannot be proven statically.
func (g *Generator) generatePmuxCellValue(cell *rtl.Cell) (lir.Value, error) {
	var (
		b      = g.builder
		widthY = g.portWidth(cell, rtl.PortY, rtl.ParamWidth)
		widthS = g.portWidth(cell, rtl.PortS, rtl.ParamSWidth)
		sigB   = cell.Port(rtl.PortB)
	)
	//
	log.Debugf("generating $pmux cell \"%s\" with width %d, select width %d",
		cell.Name, widthY, widthS)
	//
	if sigB.Width() != widthY*widthS {
		log.Warnf("mismatched B width for $pmux cell \"%s\" (%d, expected %d)",
			cell.Name, sigB.Width(), widthY*widthS)
	}
	//
	if widthS > 1 {
		log.Warnf("$pmux cell \"%s\" select is not provably one-hot; lowest set bit wins",
			cell.Name)
	}
	//
	valA, err := g.generateInputValue(cell, rtl.PortA)
	if err != nil {
		return nil, err
	}
	//
	valB, err := g.generateInputValue(cell, rtl.PortB)
	if err != nil {
		return nil, err
	}
	//
	valS, err := g.generateInputValue(cell, rtl.PortS)
	if err != nil {
		return nil, err
	}
	//
	valA = g.extendTo(valA, widthY)
	valB = g.extendTo(valB, max(widthY*widthS, valB.Type().Width()))
	valS = g.extendTo(valS, widthS)
	// Cascade from the highest select bit down, so the lowest applies last
	// and wins.
	val := valA
	//
	for k := widthS - 1; k >= 0; k-- {
		var bitS lir.Value = valS
		//
		if widthS > 1 {
			bitS = b.CreateZExtOrTrunc(b.CreateLShrBy(valS, k), lir.IntType(1))
		}
		//
		slice := b.CreateZExtOrTrunc(b.CreateLShrBy(valB, k*widthY), lir.IntType(widthY))
		//
		if g.opts.SimplifyMuxes && slice == val {
			continue
		}
		//
		val = b.CreateSelect(bitS, slice, val)
	}
	//
	return val, nil
}
