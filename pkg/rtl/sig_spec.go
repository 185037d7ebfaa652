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

// FNV-1a constants, as used for hashing throughout.
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// SigSpec is a concatenation of chunks defining a composite bit-vector
// reference.  Specs have two interchangeable storage forms: a packed vector
// of maximal chunks (no two adjacent chunks mergeable), and an unpacked
// vector of per-bit references used for bit-level editing.  Conversion
// between the two forms is lazy, idempotent and inverse.  Specs are value
// types and freely copyable, though mutating operations should only be
// applied to specs not shared with other owners (use Clone otherwise).
type SigSpec struct {
	// width of this spec in bits.
	width int
	// hash caches the spec hashcode; zero means "not yet computed".
	hash uint64
	// chunks holds the packed form.
	chunks []SigChunk
	// bits holds the unpacked form.  At most one of chunks/bits is non-empty.
	bits []SigBit
}

// ============================================================================
// Constructors
// ============================================================================

// SigOfWire constructs a spec covering an entire wire.
func SigOfWire(wire *Wire) SigSpec {
	if wire.Width == 0 {
		return SigSpec{}
	}
	//
	return SigSpec{width: wire.Width, chunks: []SigChunk{ChunkOfWire(wire)}}
}

// SigOfSlice constructs a spec covering the given slice of a wire.
func SigOfSlice(wire *Wire, offset, width int) SigSpec {
	if width == 0 {
		return SigSpec{}
	}
	//
	return SigSpec{width: width, chunks: []SigChunk{ChunkOfSlice(wire, offset, width)}}
}

// SigOfConst constructs a spec holding the given constant.
func SigOfConst(value Const) SigSpec {
	if value.Width() == 0 {
		return SigSpec{}
	}
	//
	return SigSpec{width: value.Width(), chunks: []SigChunk{ChunkOfConst(value)}}
}

// SigOfState constructs a spec of the given width with every bit set to the
// given state.
func SigOfState(s State, width int) SigSpec {
	return SigOfConst(ConstOfState(s, width))
}

// SigOfUint constructs a constant spec of the given width holding the low
// bits of val.
func SigOfUint(val uint64, width int) SigSpec {
	return SigOfConst(ConstOfUint(val, width))
}

// SigOfInt constructs a constant spec of the given width using two's
// complement representation.
func SigOfInt(val int64, width int) SigSpec {
	return SigOfConst(ConstOfInt(val, width))
}

// SigOfChunk constructs a spec holding a single chunk.
func SigOfChunk(chunk SigChunk) SigSpec {
	if chunk.Width == 0 {
		return SigSpec{}
	}
	//
	return SigSpec{width: chunk.Width, chunks: []SigChunk{chunk}}
}

// SigOfBit constructs a width-1 spec holding a single bit.
func SigOfBit(bit SigBit) SigSpec {
	return SigOfChunk(ChunkOfBit(bit))
}

// SigOfBits constructs a spec from the given per-bit references, normalising
// into packed form.
func SigOfBits(bits []SigBit) SigSpec {
	var sig SigSpec
	//
	for _, bit := range bits {
		sig.AppendBit(bit)
	}
	//
	return sig
}

// SigOfChunks constructs a spec from the given chunk sequence, normalising
// into packed form.
func SigOfChunks(chunks []SigChunk) SigSpec {
	var sig SigSpec
	//
	for _, c := range chunks {
		sig.Append(SigOfChunk(c))
	}
	//
	return sig
}

// Concat constructs a spec by concatenating the given parts, with the first
// part forming the most significant bits.
func Concat(parts ...SigSpec) SigSpec {
	var sig SigSpec
	//
	for i := len(parts) - 1; i >= 0; i-- {
		sig.Append(parts[i])
	}
	//
	return sig
}

// ============================================================================
// Storage forms
// ============================================================================

// packed indicates whether this spec is currently in packed form.  The empty
// spec is considered packed.
func (p *SigSpec) packed() bool {
	return len(p.bits) == 0
}

// pack converts this spec into packed form, merging adjacent mergeable bits
// into maximal chunks.
func (p *SigSpec) pack() {
	if len(p.bits) == 0 {
		return
	}
	//
	bits := p.bits
	p.bits = nil
	//
	var (
		last    *SigChunk
		lastEnd int
	)
	//
	for _, bit := range bits {
		if last != nil && bit.Wire == last.Wire {
			if bit.Wire == nil {
				last.Data = append(last.Data, bit.Data)
				last.Width++

				continue
			} else if lastEnd == bit.Offset {
				lastEnd++
				last.Width++

				continue
			}
		}
		//
		p.chunks = append(p.chunks, ChunkOfBit(bit))
		last = &p.chunks[len(p.chunks)-1]
		lastEnd = bit.Offset + 1
	}
	//
	p.check()
}

// unpack converts this spec into unpacked (per-bit) form, invalidating any
// cached hash.
func (p *SigSpec) unpack() {
	if len(p.chunks) == 0 {
		return
	}
	//
	p.bits = make([]SigBit, 0, p.width)
	//
	for _, c := range p.chunks {
		for i := 0; i < c.Width; i++ {
			p.bits = append(p.bits, c.Bit(i))
		}
	}
	//
	p.chunks = nil
	p.hash = 0
}

// check asserts the structural invariants of this spec: chunk widths sum to
// the declared width, no empty chunks, and no two adjacent mergeable chunks.
func (p *SigSpec) check() {
	if p.packed() {
		w := 0
		//
		for i, c := range p.chunks {
			if c.Width == 0 {
				panic("empty chunk in packed spec")
			} else if c.Wire == nil {
				if i > 0 && p.chunks[i-1].Wire == nil {
					panic("adjacent constant chunks in packed spec")
				} else if c.Offset != 0 {
					panic("constant chunk with nonzero offset")
				} else if len(c.Data) != c.Width {
					panic("constant chunk width disagrees with data")
				}
			} else {
				if i > 0 && p.chunks[i-1].Wire == c.Wire &&
					p.chunks[i-1].Offset+p.chunks[i-1].Width == c.Offset {
					panic("adjacent mergeable wire chunks in packed spec")
				} else if c.Offset < 0 || c.Offset+c.Width > c.Wire.Width {
					panic(fmt.Sprintf("chunk [%d+:%d] out of range for wire \"%s\"",
						c.Offset, c.Width, c.Wire.Name))
				} else if len(c.Data) != 0 {
					panic("wire chunk carries data")
				}
			}
			//
			w += c.Width
		}
		//
		if w != p.width {
			panic(fmt.Sprintf("packed spec width %d disagrees with chunks (%d)", p.width, w))
		}
	} else if p.width != len(p.bits) {
		panic(fmt.Sprintf("unpacked spec width %d disagrees with bits (%d)", p.width, len(p.bits)))
	}
}

// Clone produces a deep copy of this spec, sharing no storage with the
// original.
func (p *SigSpec) Clone() SigSpec {
	clone := SigSpec{width: p.width, hash: p.hash}
	clone.bits = slices.Clone(p.bits)
	//
	for _, c := range p.chunks {
		c.Data = slices.Clone(c.Data)
		clone.chunks = append(clone.chunks, c)
	}
	//
	return clone
}

// ============================================================================
// Basic accessors
// ============================================================================

// Width returns the total number of bits referenced by this spec.
func (p SigSpec) Width() int {
	return p.width
}

// Chunks returns the packed chunk sequence of this spec.
func (p *SigSpec) Chunks() []SigChunk {
	p.pack()
	return p.chunks
}

// Bits returns the per-bit references of this spec, least significant first.
func (p *SigSpec) Bits() []SigBit {
	if p.packed() {
		bits := make([]SigBit, 0, p.width)
		//
		for _, c := range p.chunks {
			for i := 0; i < c.Width; i++ {
				bits = append(bits, c.Bit(i))
			}
		}
		//
		return bits
	}
	//
	return slices.Clone(p.bits)
}

// Bit returns the i'th bit of this spec.
func (p *SigSpec) Bit(i int) SigBit {
	if i < 0 || i >= p.width {
		panic(fmt.Sprintf("bit index %d out of range for spec of width %d", i, p.width))
	}
	//
	if !p.packed() {
		return p.bits[i]
	}
	//
	for _, c := range p.chunks {
		if i < c.Width {
			return c.Bit(i)
		}
		//
		i -= c.Width
	}
	// Unreachable given the width check above.
	panic("unreachable")
}

// ============================================================================
// Concatenation and slicing
// ============================================================================

// Append concatenates the given spec onto the top (most significant end) of
// this spec, maintaining the maximal-chunk invariant when packed.
func (p *SigSpec) Append(sig SigSpec) {
	if sig.width == 0 {
		return
	} else if p.width == 0 {
		*p = sig.Clone()
		return
	}
	//
	p.hash = 0
	//
	if p.packed() != sig.packed() {
		p.pack()
		sig.pack()
	}
	//
	if p.packed() {
		for _, c := range sig.chunks {
			last := &p.chunks[len(p.chunks)-1]
			//
			if last.Wire == nil && c.Wire == nil {
				last.Data = append(last.Data, c.Data...)
				last.Width += c.Width
			} else if last.Wire == c.Wire && last.Offset+last.Width == c.Offset {
				last.Width += c.Width
			} else {
				c.Data = slices.Clone(c.Data)
				p.chunks = append(p.chunks, c)
			}
		}
	} else {
		p.bits = append(p.bits, sig.bits...)
	}
	//
	p.width += sig.width
	p.check()
}

// AppendBit concatenates a single bit onto the top of this spec.
func (p *SigSpec) AppendBit(bit SigBit) {
	p.hash = 0
	//
	if p.packed() {
		n := len(p.chunks)
		//
		switch {
		case n == 0:
			p.chunks = append(p.chunks, ChunkOfBit(bit))
		case bit.Wire == nil && p.chunks[n-1].Wire == nil:
			p.chunks[n-1].Data = append(p.chunks[n-1].Data, bit.Data)
			p.chunks[n-1].Width++
		case bit.Wire != nil && p.chunks[n-1].Wire == bit.Wire &&
			p.chunks[n-1].Offset+p.chunks[n-1].Width == bit.Offset:
			p.chunks[n-1].Width++
		default:
			p.chunks = append(p.chunks, ChunkOfBit(bit))
		}
	} else {
		p.bits = append(p.bits, bit)
	}
	//
	p.width++
	p.check()
}

// Extract returns the slice of the given length starting at the given bit
// offset.
func (p *SigSpec) Extract(offset, length int) SigSpec {
	if offset < 0 || length < 0 || offset+length > p.width {
		panic(fmt.Sprintf("extract [%d+:%d] out of range for spec of width %d",
			offset, length, p.width))
	}
	//
	return SigOfBits(p.Bits()[offset : offset+length])
}

// RemoveAt deletes the given bit range from this spec.
func (p *SigSpec) RemoveAt(offset, length int) {
	if offset < 0 || length < 0 || offset+length > p.width {
		panic(fmt.Sprintf("remove [%d+:%d] out of range for spec of width %d",
			offset, length, p.width))
	}
	//
	p.unpack()
	p.hash = 0
	p.bits = append(p.bits[:offset], p.bits[offset+length:]...)
	p.width = len(p.bits)
	p.check()
}

// ReplaceAt overwrites the bits of this spec starting at the given offset
// with the bits of the given spec.
func (p *SigSpec) ReplaceAt(offset int, with SigSpec) {
	if offset < 0 || offset+with.width > p.width {
		panic(fmt.Sprintf("replace at [%d+:%d] out of range for spec of width %d",
			offset, with.width, p.width))
	}
	//
	p.unpack()
	p.hash = 0
	//
	copy(p.bits[offset:offset+with.width], with.Bits())
	p.check()
}

// Repeat returns the concatenation of n copies of this spec.
func (p *SigSpec) Repeat(n int) SigSpec {
	var sig SigSpec
	//
	for i := 0; i < n; i++ {
		sig.Append(*p)
	}
	//
	return sig
}

// ExtendU0 truncates or pads this spec to exactly the given width.
// Sign-extension replicates the top bit of the source spec (an undefined bit
// if the source is empty); zero-extension pads with literal zeros.
func (p *SigSpec) ExtendU0(width int, signed bool) {
	p.pack()
	//
	if p.width > width {
		p.RemoveAt(width, p.width-width)
	}
	//
	if p.width < width {
		padding := BitOfState(S0)
		//
		if signed {
			if p.width > 0 {
				padding = p.Bit(p.width - 1)
			} else {
				padding = BitOfState(Sx)
			}
		}
		//
		for p.width < width {
			p.AppendBit(padding)
		}
	}
}

// ============================================================================
// Comparison and hashing
// ============================================================================

// Hash returns the spec hashcode, computing and caching it on demand.  Equal
// specs always hash equal; only the empty spec hashes to zero.
func (p *SigSpec) Hash() uint64 {
	if p.hash != 0 || p.width == 0 {
		return p.hash
	}
	//
	p.pack()
	//
	hash := fnvOffset64
	mix := func(v uint64) {
		hash ^= v
		hash *= fnvPrime64
	}
	//
	for _, c := range p.chunks {
		if c.Wire == nil {
			for _, s := range c.Data {
				mix(uint64(s))
			}
		} else {
			for _, b := range []byte(c.Wire.Name) {
				mix(uint64(b))
			}
			//
			mix(uint64(c.Offset))
			mix(uint64(c.Width))
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

// Equals compares two specs for equality of the bits they reference, which
// by maximal-chunk normalisation is packed structural equality.
func (p *SigSpec) Equals(other *SigSpec) bool {
	if p == other {
		return true
	} else if p.width != other.width {
		return false
	} else if p.width == 0 {
		return true
	}
	//
	p.pack()
	other.pack()
	//
	if len(p.chunks) != len(other.chunks) || p.Hash() != other.Hash() {
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

// Less provides a total order over specs using width, then chunk count, then
// hash, then lexicographic chunk comparison.
func (p *SigSpec) Less(other *SigSpec) bool {
	if p == other {
		return false
	} else if p.width != other.width {
		return p.width < other.width
	}
	//
	p.pack()
	other.pack()
	//
	if len(p.chunks) != len(other.chunks) {
		return len(p.chunks) < len(other.chunks)
	}
	//
	if p.Hash() != other.Hash() {
		return p.Hash() < other.Hash()
	}
	//
	for i := range p.chunks {
		if !p.chunks[i].Equals(other.chunks[i]) {
			return p.chunks[i].Less(other.chunks[i])
		}
	}
	//
	return false
}

// ============================================================================
// Predicates
// ============================================================================

// IsWire indicates whether this spec is exactly one entire wire.
func (p *SigSpec) IsWire() bool {
	p.pack()
	return len(p.chunks) == 1 && p.chunks[0].Wire != nil && p.chunks[0].Wire.Width == p.width
}

// IsChunk indicates whether this spec consists of a single chunk.
func (p *SigSpec) IsChunk() bool {
	p.pack()
	return len(p.chunks) == 1
}

// IsFullyConst indicates whether every bit of this spec is a literal.  The
// empty spec is fully constant.
func (p *SigSpec) IsFullyConst() bool {
	p.pack()
	//
	for _, c := range p.chunks {
		if c.Width > 0 && c.Wire != nil {
			return false
		}
	}
	//
	return true
}

// IsFullyZero indicates whether every bit of this spec is literal zero.
func (p *SigSpec) IsFullyZero() bool {
	return p.isFully(func(s State) bool { return s == S0 })
}

// IsFullyOnes indicates whether every bit of this spec is literal one.
func (p *SigSpec) IsFullyOnes() bool {
	return p.isFully(func(s State) bool { return s == S1 })
}

// IsFullyDef indicates whether every bit of this spec is a defined literal.
func (p *SigSpec) IsFullyDef() bool {
	return p.isFully(func(s State) bool { return s == S0 || s == S1 })
}

// IsFullyUndef indicates whether every bit of this spec is an undefined
// literal (x or z).
func (p *SigSpec) IsFullyUndef() bool {
	return p.isFully(func(s State) bool { return s == Sx || s == Sz })
}

func (p *SigSpec) isFully(pred func(State) bool) bool {
	p.pack()
	//
	for _, c := range p.chunks {
		if c.Width > 0 && c.Wire != nil {
			return false
		}
		//
		for _, s := range c.Data {
			if !pred(s) {
				return false
			}
		}
	}
	//
	return true
}

// HasConst indicates whether any bit of this spec is a literal.
func (p *SigSpec) HasConst() bool {
	p.pack()
	//
	for _, c := range p.chunks {
		if c.Width > 0 && c.Wire == nil {
			return true
		}
	}
	//
	return false
}

// HasMarkedBits indicates whether any literal bit of this spec is the marker
// state.
func (p *SigSpec) HasMarkedBits() bool {
	p.pack()
	//
	for _, c := range p.chunks {
		if c.Wire == nil {
			for _, s := range c.Data {
				if s == Sm {
					return true
				}
			}
		}
	}
	//
	return false
}

// IsOnehot checks whether this spec is a fully defined constant with exactly
// one bit set, returning the position of that bit.
func (p *SigSpec) IsOnehot() (int, bool) {
	p.pack()
	//
	if !p.IsFullyConst() || p.width == 0 {
		return 0, false
	}
	//
	return p.AsConst().IsOnehot()
}

// ============================================================================
// Coercions
// ============================================================================

// AsConst returns this spec as a constant, which it must be.
func (p *SigSpec) AsConst() Const {
	p.pack()
	//
	if !p.IsFullyConst() || len(p.chunks) > 1 {
		panic("spec is not a constant")
	} else if p.width == 0 {
		return Const{}
	}
	//
	return Const{p.chunks[0].Data}
}

// AsInt returns this constant spec as an integer, sign-extending when signed
// is given.
func (p *SigSpec) AsInt(signed bool) int64 {
	return p.AsConst().AsInt(signed)
}

// AsBool returns true if any bit of this constant spec is set.
func (p *SigSpec) AsBool() bool {
	return p.AsConst().AsBool()
}

// AsString returns this spec as a string in most-significant-first order,
// with '?' standing in for wire bits.
func (p *SigSpec) AsString() string {
	p.pack()
	//
	var r strings.Builder
	//
	for i := len(p.chunks); i > 0; i-- {
		c := p.chunks[i-1]
		//
		if c.Wire != nil {
			r.WriteString(strings.Repeat("?", c.Width))
		} else {
			r.WriteString(Const{c.Data}.AsString())
		}
	}
	//
	return r.String()
}

// AsWire returns the wire this spec covers, which it must exactly.
func (p *SigSpec) AsWire() *Wire {
	if !p.IsWire() {
		panic("spec is not a whole wire")
	}
	//
	return p.chunks[0].Wire
}

// AsChunk returns the single chunk of this spec, which must be one.
func (p *SigSpec) AsChunk() SigChunk {
	if !p.IsChunk() {
		panic("spec is not a single chunk")
	}
	//
	return p.chunks[0]
}

// AsBit returns the single bit of this spec, which must have width one.
func (p *SigSpec) AsBit() SigBit {
	if p.width != 1 {
		panic(fmt.Sprintf("spec of width %d is not a single bit", p.width))
	}
	//
	if p.packed() {
		return p.chunks[0].Bit(0)
	}
	//
	return p.bits[0]
}

// String renders this spec in the same comma-separated form accepted by
// ParseSig, most significant chunk first.
func (p *SigSpec) String() string {
	p.pack()
	//
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
