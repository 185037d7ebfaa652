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
	"sort"
)

// Bit-level editing operations over signal specs.  These all work on the
// unpacked form; constant bits in patterns are always ignored (matching
// applies to wire bits only).

// Replace substitutes, for every bit of this spec equal to a wire bit of
// pattern, the corresponding bit of with.  Pattern and with must have equal
// width.
func (p *SigSpec) Replace(pattern, with SigSpec) {
	p.ReplaceInto(pattern, with, p)
}

// ReplaceInto is as Replace, except the substitution is applied to the
// parallel spec other (which must have the same width as this spec) at the
// indices where this spec matches.
func (p *SigSpec) ReplaceInto(pattern, with SigSpec, other *SigSpec) {
	if other == nil {
		panic("nil replacement target")
	} else if p.width != other.width {
		panic(fmt.Sprintf("replacement target width %d does not match %d", other.width, p.width))
	} else if pattern.width != with.width {
		panic(fmt.Sprintf("pattern width %d does not match replacement width %d",
			pattern.width, with.width))
	}
	//
	patternBits := pattern.Bits()
	withBits := with.Bits()
	//
	p.unpack()
	other.unpack()
	other.hash = 0
	//
	for i, pb := range patternBits {
		if pb.Wire == nil {
			continue
		}
		//
		for j, b := range p.bits {
			if b == pb {
				other.bits[j] = withBits[i]
			}
		}
	}
	//
	other.check()
}

// ReplaceMap substitutes bits of this spec according to the given bit
// mapping.
func (p *SigSpec) ReplaceMap(rules map[SigBit]SigBit) {
	p.ReplaceMapInto(rules, p)
}

// ReplaceMapInto is as ReplaceMap, applied to the parallel spec other at the
// indices where this spec matches.
func (p *SigSpec) ReplaceMapInto(rules map[SigBit]SigBit, other *SigSpec) {
	if other == nil {
		panic("nil replacement target")
	} else if p.width != other.width {
		panic(fmt.Sprintf("replacement target width %d does not match %d", other.width, p.width))
	}
	//
	if len(rules) == 0 {
		return
	}
	//
	p.unpack()
	other.unpack()
	other.hash = 0
	//
	for i, b := range p.bits {
		if nb, ok := rules[b]; ok {
			other.bits[i] = nb
		}
	}
	//
	other.check()
}

// Remove deletes from this spec every bit covered by a wire chunk of
// pattern.
func (p *SigSpec) Remove(pattern SigSpec) {
	p.RemoveInto(pattern, nil)
}

// RemoveInto is as Remove; when other is given, the bits at the same indices
// are also deleted from it (other must have the same width as this spec).
// Iteration runs from high index to low so indices stay stable.
func (p *SigSpec) RemoveInto(pattern SigSpec, other *SigSpec) {
	p.unpack()
	p.hash = 0
	//
	if other != nil {
		if p.width != other.width {
			panic(fmt.Sprintf("removal target width %d does not match %d", other.width, p.width))
		}
		//
		other.unpack()
		other.hash = 0
	}
	//
	chunks := pattern.Chunks()
	//
	for i := len(p.bits) - 1; i >= 0; i-- {
		if p.bits[i].Wire == nil {
			continue
		}
		//
		for _, pc := range chunks {
			if p.bits[i].Wire == pc.Wire && p.bits[i].Offset >= pc.Offset &&
				p.bits[i].Offset < pc.Offset+pc.Width {
				p.bits = append(p.bits[:i], p.bits[i+1:]...)
				p.width--
				//
				if other != nil {
					other.bits = append(other.bits[:i], other.bits[i+1:]...)
					other.width--
				}
				//
				break
			}
		}
	}
	//
	p.check()
	//
	if other != nil {
		other.check()
	}
}

// ExtractMatching is the dual of Remove: it returns the bits of this spec
// covered by a wire chunk of pattern.  When other is given, the bits of
// other at the matching indices are returned instead (other must have the
// same width as this spec).
func (p *SigSpec) ExtractMatching(pattern SigSpec, other *SigSpec) SigSpec {
	if other != nil && p.width != other.width {
		panic(fmt.Sprintf("extraction target width %d does not match %d", other.width, p.width))
	}
	//
	var (
		ret       SigSpec
		bits      = p.Bits()
		otherBits []SigBit
	)
	//
	if other != nil {
		otherBits = other.Bits()
	}
	//
	for _, pc := range pattern.Chunks() {
		for i := 0; i < p.width; i++ {
			if bits[i].Wire != nil && bits[i].Wire == pc.Wire &&
				bits[i].Offset >= pc.Offset && bits[i].Offset < pc.Offset+pc.Width {
				if other != nil {
					ret.AppendBit(otherBits[i])
				} else {
					ret.AppendBit(bits[i])
				}
			}
		}
	}
	//
	return ret
}

// RemoveConst deletes every literal bit from this spec, keeping wire bits
// only.
func (p *SigSpec) RemoveConst() {
	p.unpack()
	p.hash = 0
	//
	bits := p.bits[:0]
	//
	for _, b := range p.bits {
		if b.Wire != nil {
			bits = append(bits, b)
		}
	}
	//
	p.bits = bits
	p.width = len(bits)
	p.check()
}

// Sort orders the bits of this spec.
func (p *SigSpec) Sort() {
	p.unpack()
	p.hash = 0
	//
	sort.Slice(p.bits, func(i, j int) bool { return p.bits[i].Less(p.bits[j]) })
}

// SortAndUnify orders the bits of this spec and removes duplicates.
func (p *SigSpec) SortAndUnify() {
	p.Sort()
	//
	bits := p.bits[:0]
	//
	for i, b := range p.bits {
		if i == 0 || b != p.bits[i-1] {
			bits = append(bits, b)
		}
	}
	//
	*p = SigOfBits(bits)
}

// BitMap constructs a bit-to-bit mapping taking each bit of this spec to the
// bit of other at the same index.
func (p *SigSpec) BitMap(other *SigSpec) map[SigBit]SigBit {
	if p.width != other.width {
		panic(fmt.Sprintf("bit map target width %d does not match %d", other.width, p.width))
	}
	//
	var (
		bits      = p.Bits()
		otherBits = other.Bits()
		rules     = make(map[SigBit]SigBit, p.width)
	)
	//
	for i := range bits {
		rules[bits[i]] = otherBits[i]
	}
	//
	return rules
}

// Match compares this spec width-for-width against a pattern string over
// {'0','1','*',' '}, given most significant bit first.  A '*' accepts x or
// z, a ' ' accepts anything; any other character is a fatal error.
func (p *SigSpec) Match(pattern string) bool {
	if len(pattern) != p.width {
		panic(fmt.Sprintf("pattern length %d does not match spec width %d", len(pattern), p.width))
	}
	//
	bits := p.Bits()
	//
	for i, ch := range pattern {
		// Pattern is MSB first.
		bit := bits[p.width-1-i]
		//
		switch ch {
		case ' ':
			continue
		case '*':
			if bit.Wire != nil || (bit.Data != Sx && bit.Data != Sz) {
				return false
			}
		case '0':
			if bit.Wire != nil || bit.Data != S0 {
				return false
			}
		case '1':
			if bit.Wire != nil || bit.Data != S1 {
				return false
			}
		default:
			panic(fmt.Sprintf("invalid pattern character '%c'", ch))
		}
	}
	//
	return true
}
