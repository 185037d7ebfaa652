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

// Package lift synthesises, for a designated wire of an elaborated
// combinational netlist, a pure function over the module input ports whose
// result reproduces the value driving that wire.  The generator walks the
// driver graph backwards from the target, memoising an IR value per driver
// spec, and composes compound values from their chunks with shift, truncate,
// zero-extend and bitwise or.
package lift

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-netlift/pkg/driver"
	"github.com/consensys/go-netlift/pkg/lir"
	"github.com/consensys/go-netlift/pkg/rtl"
	"github.com/consensys/go-netlift/pkg/util/collection/hash"
)

// Generator synthesises IR values for driver specs.  A generator may be
// reused across targets of the same module (the driver index is rebuilt only
// when the module changes), but the value cache is reset for every target so
// that IR nodes are never shared across emissions.
type Generator struct {
	opts Options
	// module the driver index is currently built for.
	module *rtl.Module
	// finder is the driver index.
	finder *driver.Finder
	// cache memoises generated values by driver spec.
	cache *hash.Map[*driver.Spec, lir.Value]
	// active tracks the cells currently being generated, for cycle
	// detection.
	active map[*rtl.Cell]bool
	// builder appends instructions to the function under construction.
	builder *lir.Builder
	// irModule is the module under construction.
	irModule *lir.Module
}

// NewGenerator constructs a fresh generator with the given options.
func NewGenerator(opts Options) *Generator {
	return &Generator{
		opts:    opts,
		finder:  driver.NewFinder(),
		cache:   hash.NewMap[*driver.Spec, lir.Value](256),
		active:  make(map[*rtl.Cell]bool),
		builder: lir.NewBuilder(),
	}
}

// Reset discards all per-emission state, including the driver index.
func (g *Generator) Reset() {
	g.module = nil
	g.finder.Clear()
	g.cache.Clear()
	g.active = make(map[*rtl.Cell]bool)
	g.irModule = nil
}

// IRModule returns the module constructed by the last generation, or nil.
func (g *Generator) IRModule() *lir.Module {
	return g.irModule
}

// cacheAdd registers a fully constructed value for the given driver spec.
// Registering a spec twice is a programmer error.
func (g *Generator) cacheAdd(spec driver.Spec, value lir.Value) {
	log.Debugf("caching value for driver spec %s", spec.String())
	//
	if g.cache.Insert(&spec, value) {
		panic("value already cached for driver spec " + spec.String())
	}
}

// generateValue finds or creates the IR value reproducing the given driver
// spec.
func (g *Generator) generateValue(dSpec *driver.Spec) (lir.Value, error) {
	if val, ok := g.cache.Get(dSpec); ok {
		return val, nil
	}
	//
	switch {
	case dSpec.IsWire():
		// An entire wire, representing a module input port.  Its value is
		// pre-created as a function argument, so a cache miss here is fatal.
		wire := dSpec.AsWire()
		//
		return nil, errors.Errorf("no seeded value for input wire \"%s\"", wire.Name)
	case dSpec.IsCell():
		// An entire cell output.
		cell, port := dSpec.AsCell()
		//
		val, err := g.generateCellOutputValue(cell, port)
		if err != nil {
			return nil, err
		}
		// Under width-mismatch warnings the dispatch may have worked at a
		// widened width; the cached value must match the connected width.
		val = g.extendTo(val, dSpec.Width())
		//
		g.cacheAdd(*dSpec, val)
		//
		return val, nil
	case dSpec.IsFullyConst():
		// Not worth caching: literals are cheap to rebuild.
		return g.literalValue(dSpec.AsConst()), nil
	}
	// A heterogeneous concatenation: a mix of input wires, cell outputs and
	// literals (or slices of them).  Generate each chunk at its destination
	// offset and or them together.
	log.Debugf("generating value for compound driver spec %s", dSpec.String())
	//
	var (
		values []lir.Value
		offset int
	)
	//
	for _, chunk := range dSpec.Chunks() {
		val, err := g.generateChunkValue(chunk, dSpec.Width(), offset)
		if err != nil {
			return nil, err
		}
		//
		values = append(values, val)
		offset += chunk.Width
	}
	//
	if len(values) == 1 {
		// A single (sliced) chunk, already cached by generateChunkValue.
		return values[0], nil
	}
	//
	val := values[0]
	//
	for _, v := range values[1:] {
		val = g.builder.CreateOr(val, v)
	}
	//
	if g.opts.VerboseValueNames {
		g.nameValue(val, dSpec.String())
	}
	//
	g.cacheAdd(*dSpec, val)
	//
	return val, nil
}

// generateChunkValue creates the value of a single chunk, placed at the
// given destination offset and zero-extended to totalWidth.
func (g *Generator) generateChunkValue(chunk driver.Chunk, totalWidth, offset int) (lir.Value, error) {
	if totalWidth < chunk.Width+offset {
		panic("chunk does not fit its destination")
	}
	//
	if chunk.IsConst() {
		// Build the literal with zero padding on both sides.
		bits, xish := definedBits(chunk.AsConst())
		//
		if xish {
			log.Warnf("x-ish driver chunk found: %s", chunk.AsConst().AsString())
			//
			if g.opts.UsePoison {
				return lir.NewPoison(totalWidth), nil
			}
		}
		//
		var padded strings.Builder
		padded.WriteString(strings.Repeat("0", totalWidth-chunk.Width-offset))
		padded.WriteString(bits)
		padded.WriteString(strings.Repeat("0", offset))
		//
		return lir.ConstFromBits(padded.String()), nil
	}
	// A slice of an input wire or cell output.
	sliceSpec := driver.SpecOfChunk(chunk)
	//
	val, ok := g.cache.Get(&sliceSpec)
	if !ok {
		// Find or make a value for the entire wire or cell output.
		var objSpec driver.Spec
		//
		if chunk.Wire != nil {
			objSpec = driver.SpecOfWire(chunk.Wire)
		} else {
			objSpec = driver.SpecOfCell(chunk.Cell, chunk.Port)
		}
		//
		objVal, err := g.generateValue(&objSpec)
		if err != nil {
			return nil, err
		}
		// Shift the slice down and truncate it to its own width.
		val = g.builder.CreateLShrBy(objVal, chunk.Offset)
		val = g.builder.CreateZExtOrTrunc(val, lir.IntType(chunk.Width))
		// Only a nontrivial slice is worth a cache entry of its own.
		if val != objVal {
			if g.opts.VerboseValueNames {
				g.nameValue(val, sliceSpec.String())
			}
			//
			g.cacheAdd(sliceSpec, val)
		}
	}
	// Place the slice at its destination offset within the full width.
	if offset == 0 && totalWidth == chunk.Width {
		return val, nil
	}
	//
	val = g.builder.CreateZExtOrTrunc(val, lir.IntType(totalWidth))
	val = g.builder.CreateShlBy(val, offset)
	//
	return val, nil
}

// literalValue materialises a fully constant driver spec, coercing unknown
// bits to zero (or the whole value to poison) with a warning.
func (g *Generator) literalValue(value rtl.Const) lir.Value {
	bits, xish := definedBits(value)
	//
	if xish {
		log.Warnf("x-ish driver spec found: %s", value.AsString())
		//
		if g.opts.UsePoison {
			return lir.NewPoison(value.Width())
		}
	}
	//
	return lir.ConstFromBits(bits)
}

// definedBits renders a constant as a binary string with every non-01 bit
// coerced to zero, reporting whether any coercion took place.
func definedBits(value rtl.Const) (string, bool) {
	var (
		r    strings.Builder
		xish = false
	)
	//
	for i := value.Width(); i > 0; i-- {
		switch value.Bits[i-1] {
		case rtl.S1:
			r.WriteByte('1')
		case rtl.S0:
			r.WriteByte('0')
		default:
			r.WriteByte('0')
			xish = true
		}
	}
	//
	return r.String(), xish
}

// nameValue attaches a sanitised name to a generated instruction.  Values
// which are not instructions (constants, parameters) keep their identity.
func (g *Generator) nameValue(val lir.Value, name string) {
	if instr, ok := val.(*lir.Instr); ok {
		instr.SetName(sanitizeName(name))
	}
}

// sanitizeName rewrites an arbitrary netlist name into an IR identifier.
func sanitizeName(name string) string {
	var r strings.Builder
	//
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z',
			ch >= '0' && ch <= '9', ch == '_', ch == '.':
			r.WriteRune(ch)
		default:
			r.WriteRune('_')
		}
	}
	//
	return strings.Trim(r.String(), "_")
}
