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
package rtl

import (
	"fmt"
	"slices"
	"strings"
)

// SigBit is a reference to a single bit: either one bit of a wire, or a
// literal state.  A nil wire indicates a literal, in which case Data holds
// the state and Offset is zero.
type SigBit struct {
	// Wire referenced by this bit, or nil for a literal.
	Wire *Wire
	// Offset of this bit within the wire.
	Offset int
	// Data holds the literal state when Wire is nil.
	Data State
}

// BitOfState constructs a literal bit.
func BitOfState(s State) SigBit {
	return SigBit{Data: s}
}

// BitOfWire constructs a reference to the given bit of a wire.
func BitOfWire(wire *Wire, offset int) SigBit {
	if wire == nil {
		panic("nil wire")
	}
	//
	return SigBit{Wire: wire, Offset: offset}
}

// IsConst indicates whether this bit is a literal.
func (b SigBit) IsConst() bool {
	return b.Wire == nil
}

// Less provides a total order over bits, breaking ties on wire identity by
// name, then offset, then data.
func (b SigBit) Less(other SigBit) bool {
	if b.Wire != nil && other.Wire != nil && b.Wire != other.Wire {
		return b.Wire.Name < other.Wire.Name
	} else if (b.Wire == nil) != (other.Wire == nil) {
		// Literals order before wire bits.
		return b.Wire == nil
	} else if b.Offset != other.Offset {
		return b.Offset < other.Offset
	}
	//
	return b.Data < other.Data
}

func (b SigBit) String() string {
	if b.Wire == nil {
		return b.Data.String()
	}
	//
	return fmt.Sprintf("%s[%d]", b.Wire.Name, b.Offset)
}

// SigChunk is one contiguous reference: either a slice of a wire, or an
// ordered sequence of literal bits.  Literal chunks always have offset zero.
type SigChunk struct {
	// Wire referenced by this chunk, or nil for a literal chunk.
	Wire *Wire
	// Data holds the literal bits (LSB first) when Wire is nil.
	Data []State
	// Offset of the first referenced bit within the wire.
	Offset int
	// Width of this chunk in bits.
	Width int
}

// ChunkOfWire constructs a chunk covering an entire wire.
func ChunkOfWire(wire *Wire) SigChunk {
	if wire == nil {
		panic("nil wire")
	}
	//
	return SigChunk{Wire: wire, Width: wire.Width}
}

// ChunkOfSlice constructs a chunk covering the given slice of a wire.
func ChunkOfSlice(wire *Wire, offset, width int) SigChunk {
	if wire == nil {
		panic("nil wire")
	} else if offset < 0 || width < 0 || offset+width > wire.Width {
		panic(fmt.Sprintf("slice [%d+:%d] out of range for wire \"%s\" of width %d",
			offset, width, wire.Name, wire.Width))
	}
	//
	return SigChunk{Wire: wire, Offset: offset, Width: width}
}

// ChunkOfConst constructs a literal chunk from the given constant.  The bits
// are copied, so the chunk shares no storage with the constant.
func ChunkOfConst(value Const) SigChunk {
	return SigChunk{Data: slices.Clone(value.Bits), Width: len(value.Bits)}
}

// ChunkOfBit constructs a width-1 chunk from the given bit.
func ChunkOfBit(bit SigBit) SigChunk {
	if bit.Wire == nil {
		return SigChunk{Data: []State{bit.Data}, Width: 1}
	}
	//
	return SigChunk{Wire: bit.Wire, Offset: bit.Offset, Width: 1}
}

// Bit returns the i'th bit of this chunk.
func (c SigChunk) Bit(i int) SigBit {
	if c.Wire == nil {
		return SigBit{Data: c.Data[i]}
	}
	//
	return SigBit{Wire: c.Wire, Offset: c.Offset + i}
}

// Extract returns the sub-chunk of the given length starting at the given
// offset within this chunk.
func (c SigChunk) Extract(offset, length int) SigChunk {
	if c.Wire != nil {
		return SigChunk{Wire: c.Wire, Offset: c.Offset + offset, Width: length}
	}
	//
	return SigChunk{Data: slices.Clone(c.Data[offset : offset+length]), Width: length}
}

// IsConst indicates whether this chunk is a literal.
func (c SigChunk) IsConst() bool {
	return c.Wire == nil
}

// Equals compares two chunks for structural equality.
func (c SigChunk) Equals(other SigChunk) bool {
	return c.Wire == other.Wire && c.Width == other.Width &&
		c.Offset == other.Offset && slices.Equal(c.Data, other.Data)
}

// Less provides a total order over chunks, ordering by wire identity (by
// name), then offset, then width, then data.
func (c SigChunk) Less(other SigChunk) bool {
	if c.Wire != nil && other.Wire != nil && c.Wire != other.Wire {
		return c.Wire.Name < other.Wire.Name
	} else if (c.Wire == nil) != (other.Wire == nil) {
		return c.Wire == nil
	} else if c.Offset != other.Offset {
		return c.Offset < other.Offset
	} else if c.Width != other.Width {
		return c.Width < other.Width
	}
	//
	return slices.Compare(c.Data, other.Data) < 0
}

func (c SigChunk) String() string {
	if c.Wire == nil {
		// Sized binary literal, so that ParseSig reads it back unchanged.
		return fmt.Sprintf("%d'b%s", c.Width, Const{c.Data}.AsString())
	} else if c.Offset == 0 && c.Width == c.Wire.Width {
		return c.Wire.Name
	} else if c.Width == 1 {
		return fmt.Sprintf("%s[%d]", c.Wire.Name, c.Offset)
	}
	//
	var r strings.Builder
	fmt.Fprintf(&r, "%s[%d:%d]", c.Wire.Name, c.Offset+c.Width-1, c.Offset)
	//
	return r.String()
}
