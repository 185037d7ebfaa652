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
	"fmt"
	"slices"

	"github.com/consensys/go-netlift/pkg/rtl"
)

// Bit identifies the producer of a single netlist bit: a literal state, one
// bit of a module input wire, or one bit of a cell output port.
type Bit struct {
	// Wire is the module input wire producing this bit, or nil.
	Wire *rtl.Wire
	// Cell is the cell producing this bit, or nil.
	Cell *rtl.Cell
	// Port is the output port of Cell producing this bit.
	Port string
	// Offset of this bit within the producing wire or port.
	Offset int
	// Data holds the literal state when neither Wire nor Cell is set.
	Data rtl.State
}

// IsConst indicates whether this bit is a literal.
func (b Bit) IsConst() bool {
	return b.Wire == nil && b.Cell == nil
}

func (b Bit) String() string {
	switch {
	case b.Wire != nil:
		return fmt.Sprintf("%s[%d]", b.Wire.Name, b.Offset)
	case b.Cell != nil:
		return fmt.Sprintf("%s.%s[%d]", b.Cell.Name, b.Port, b.Offset)
	}
	//
	return b.Data.String()
}

// Chunk is one contiguous run of bits with a common producer: a literal bit
// sequence, a slice of a module input wire, or a slice of a cell output
// port.  Literal chunks always have offset zero.
type Chunk struct {
	// Wire is the module input wire this chunk slices, or nil.
	Wire *rtl.Wire
	// Cell is the cell whose output this chunk slices, or nil.
	Cell *rtl.Cell
	// Port is the output port of Cell this chunk slices.
	Port string
	// Data holds the literal bits (LSB first) when neither Wire nor Cell is
	// set.
	Data []rtl.State
	// Offset of the first bit within the producing wire or port.
	Offset int
	// Width of this chunk in bits.
	Width int
}

// ChunkOfWire constructs a chunk covering an entire module input wire.
func ChunkOfWire(wire *rtl.Wire) Chunk {
	if wire == nil {
		panic("nil wire")
	}
	//
	return Chunk{Wire: wire, Width: wire.Width}
}

// ChunkOfCell constructs a chunk covering an entire cell output port.
func ChunkOfCell(cell *rtl.Cell, port string) Chunk {
	if cell == nil {
		panic("nil cell")
	}
	//
	sig := cell.Port(port)
	//
	return Chunk{Cell: cell, Port: port, Width: sig.Width()}
}

// ChunkOfConst constructs a literal chunk from the given constant.
func ChunkOfConst(value rtl.Const) Chunk {
	return Chunk{Data: slices.Clone(value.Bits), Width: len(value.Bits)}
}

// ChunkOfBit constructs a width-1 chunk from the given bit.
func ChunkOfBit(bit Bit) Chunk {
	if bit.IsConst() {
		return Chunk{Data: []rtl.State{bit.Data}, Width: 1}
	}
	//
	return Chunk{Wire: bit.Wire, Cell: bit.Cell, Port: bit.Port, Offset: bit.Offset, Width: 1}
}

// IsConst indicates whether this chunk is a literal.
func (c Chunk) IsConst() bool {
	return c.Wire == nil && c.Cell == nil
}

// Bit returns the i'th bit of this chunk.
func (c Chunk) Bit(i int) Bit {
	if c.IsConst() {
		return Bit{Data: c.Data[i]}
	}
	//
	return Bit{Wire: c.Wire, Cell: c.Cell, Port: c.Port, Offset: c.Offset + i}
}

// ObjectWidth returns the width of the underlying producer object (the whole
// wire or the whole cell output port), or the chunk width for literals.
func (c Chunk) ObjectWidth() int {
	switch {
	case c.Wire != nil:
		return c.Wire.Width
	case c.Cell != nil:
		sig := c.Cell.Port(c.Port)
		return sig.Width()
	}
	//
	return c.Width
}

// AsConst returns the literal bits of this chunk, which must be a literal.
func (c Chunk) AsConst() rtl.Const {
	if !c.IsConst() {
		panic("chunk is not a literal")
	}
	//
	return rtl.Const{Bits: c.Data}
}

// Equals compares two chunks for structural equality.
func (c Chunk) Equals(other Chunk) bool {
	return c.Wire == other.Wire && c.Cell == other.Cell && c.Port == other.Port &&
		c.Offset == other.Offset && c.Width == other.Width &&
		slices.Equal(c.Data, other.Data)
}

func (c Chunk) String() string {
	switch {
	case c.Wire != nil:
		if c.Offset == 0 && c.Width == c.Wire.Width {
			return c.Wire.Name
		}
		//
		return fmt.Sprintf("%s[%d:%d]", c.Wire.Name, c.Offset+c.Width-1, c.Offset)
	case c.Cell != nil:
		if c.Offset == 0 && c.Width == c.ObjectWidth() {
			return fmt.Sprintf("%s.%s", c.Cell.Name, c.Port)
		}
		//
		return fmt.Sprintf("%s.%s[%d:%d]", c.Cell.Name, c.Port, c.Offset+c.Width-1, c.Offset)
	}
	//
	return rtl.Const{Bits: c.Data}.AsString()
}
