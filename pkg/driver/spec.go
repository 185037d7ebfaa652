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
	"strings"

	"github.com/consensys/go-netlift/pkg/rtl"
)

// FNV-1a constants, matching the hashing used for signal specs.
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// Spec is a packed concatenation of driver chunks describing, bit for bit,
// what produces a value.  Unlike signal specs there is no unpacked storage
// form: specs are always held in maximal-chunk normal form, which makes them
// canonical keys for the value cache.
type Spec struct {
	// width of this spec in bits.
	width int
	// hash caches the spec hashcode; zero means "not yet computed".
	hash uint64
	// chunks holds the packed chunk sequence.
	chunks []Chunk
}

// SpecOfWire constructs a spec covering an entire module input wire.
func SpecOfWire(wire *rtl.Wire) Spec {
	if wire.Width == 0 {
		return Spec{}
	}
	//
	return Spec{width: wire.Width, chunks: []Chunk{ChunkOfWire(wire)}}
}

// SpecOfCell constructs a spec covering an entire cell output port.
func SpecOfCell(cell *rtl.Cell, port string) Spec {
	chunk := ChunkOfCell(cell, port)
	//
	if chunk.Width == 0 {
		return Spec{}
	}
	//
	return Spec{width: chunk.Width, chunks: []Chunk{chunk}}
}

// SpecOfChunk constructs a spec holding a single chunk.
func SpecOfChunk(chunk Chunk) Spec {
	if chunk.Width == 0 {
		return Spec{}
	}
	//
	return Spec{width: chunk.Width, chunks: []Chunk{chunk}}
}

// SpecOfConst constructs a spec holding the given literal.
func SpecOfConst(value rtl.Const) Spec {
	return SpecOfChunk(ChunkOfConst(value))
}

// Width returns the total number of bits described by this spec.
func (p Spec) Width() int {
	return p.width
}

// Chunks returns the packed chunk sequence of this spec.
func (p *Spec) Chunks() []Chunk {
	return p.chunks
}

// AppendBit concatenates a single driver bit onto the top of this spec,
// merging it into the last chunk when the producers are contiguous.
func (p *Spec) AppendBit(bit Bit) {
	p.hash = 0
	n := len(p.chunks)
	//
	switch {
	case n == 0:
		p.chunks = append(p.chunks, ChunkOfBit(bit))
	case bit.IsConst() && p.chunks[n-1].IsConst():
		p.chunks[n-1].Data = append(p.chunks[n-1].Data, bit.Data)
		p.chunks[n-1].Width++
	case !bit.IsConst() && p.chunks[n-1].Wire == bit.Wire && p.chunks[n-1].Cell == bit.Cell &&
		p.chunks[n-1].Port == bit.Port && p.chunks[n-1].Offset+p.chunks[n-1].Width == bit.Offset:
		p.chunks[n-1].Width++
	default:
		p.chunks = append(p.chunks, ChunkOfBit(bit))
	}
	//
	p.width++
}

// Bit returns the i'th driver bit of this spec.
func (p *Spec) Bit(i int) Bit {
	if i < 0 || i >= p.width {
		panic(fmt.Sprintf("bit index %d out of range for spec of width %d", i, p.width))
	}
	//
	for _, c := range p.chunks {
		if i < c.Width {
			return c.Bit(i)
		}
		//
		i -= c.Width
	}
	//
	panic("unreachable")
}

// IsWire indicates whether this spec is exactly one entire module input
// wire.
func (p *Spec) IsWire() bool {
	return len(p.chunks) == 1 && p.chunks[0].Wire != nil &&
		p.chunks[0].Offset == 0 && p.chunks[0].Width == p.chunks[0].Wire.Width
}

// IsCell indicates whether this spec is exactly one entire cell output
// port.
func (p *Spec) IsCell() bool {
	return len(p.chunks) == 1 && p.chunks[0].Cell != nil &&
		p.chunks[0].Offset == 0 && p.chunks[0].Width == p.chunks[0].ObjectWidth()
}

// IsFullyConst indicates whether every bit of this spec is a literal.  The
// empty spec is fully constant.
func (p *Spec) IsFullyConst() bool {
	for _, c := range p.chunks {
		if !c.IsConst() {
			return false
		}
	}
	//
	return true
}

// IsFullyDef indicates whether every bit of this spec is a defined literal.
func (p *Spec) IsFullyDef() bool {
	for _, c := range p.chunks {
		if !c.IsConst() {
			return false
		}
		//
		for _, s := range c.Data {
			if !s.IsDefined() {
				return false
			}
		}
	}
	//
	return true
}

// AsConst returns this spec as a constant, which it must be.
func (p *Spec) AsConst() rtl.Const {
	if !p.IsFullyConst() {
		panic("driver spec is not a constant")
	}
	//
	bits := make([]rtl.State, 0, p.width)
	//
	for _, c := range p.chunks {
		bits = append(bits, c.Data...)
	}
	//
	return rtl.Const{Bits: bits}
}

// AsWire returns the module input wire this spec covers, which it must
// exactly.
func (p *Spec) AsWire() *rtl.Wire {
	if !p.IsWire() {
		panic("driver spec is not a whole wire")
	}
	//
	return p.chunks[0].Wire
}

// AsCell returns the cell and output port this spec covers, which it must
// exactly.
func (p *Spec) AsCell() (*rtl.Cell, string) {
	if !p.IsCell() {
		panic("driver spec is not a whole cell output")
	}
	//
	return p.chunks[0].Cell, p.chunks[0].Port
}

// Hash returns the spec hashcode, computing and caching it on demand.  Equal
// specs always hash equal; only the empty spec hashes to zero.
func (p *Spec) Hash() uint64 {
	if p.hash != 0 || p.width == 0 {
		return p.hash
	}
	//
	hash := fnvOffset64
	mix := func(v uint64) {
		hash ^= v
		hash *= fnvPrime64
	}
	mixString := func(s string) {
		for _, b := range []byte(s) {
			mix(uint64(b))
		}
	}
	//
	for _, c := range p.chunks {
		switch {
		case c.Wire != nil:
			mixString(c.Wire.Name)
			mix(uint64(c.Offset))
			mix(uint64(c.Width))
		case c.Cell != nil:
			mixString(c.Cell.Name)
			mixString(c.Port)
			mix(uint64(c.Offset))
			mix(uint64(c.Width))
		default:
			for _, s := range c.Data {
				mix(uint64(s))
			}
		}
	}
	//
	if hash == 0 {
		hash = 1
	}
	//
	p.hash = hash
	//
	return hash
}

// Equals compares two specs for equality of the producers they describe,
// which by maximal-chunk normalisation is structural equality.
func (p *Spec) Equals(other *Spec) bool {
	if p == other {
		return true
	} else if p.width != other.width || len(p.chunks) != len(other.chunks) {
		return false
	} else if p.width == 0 {
		return true
	} else if p.Hash() != other.Hash() {
		return false
	}
	//
	for i := range p.chunks {
		if !p.chunks[i].Equals(other.chunks[i]) {
			return false
		}
	}
	//
	return true
}

// String renders this spec most significant chunk first.
func (p *Spec) String() string {
	var r strings.Builder
	//
	for i := len(p.chunks); i > 0; i-- {
		if i != len(p.chunks) {
			r.WriteString(",")
		}
		//
		r.WriteString(p.chunks[i-1].String())
	}
	//
	return r.String()
}
