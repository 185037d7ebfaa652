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
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-netlift/pkg/rtl"
)

// Finder is the driver index: after one pass over a module it answers, for
// any bit of any wire, what produces that bit.  A well-formed netlist gives
// every bit of every non-input wire exactly one producer; duplicate or
// missing drivers are input errors.  The index is built once per module and
// is read-only thereafter.
type Finder struct {
	// module this index was built for.
	module *rtl.Module
	// drivers maps wire bits to their terminal producers (cell outputs and
	// module input bits).
	drivers map[rtl.SigBit]Bit
	// aliases maps wire bits driven by top-level connections to the
	// corresponding right-hand side bit, resolved transitively on lookup.
	aliases map[rtl.SigBit]rtl.SigBit
}

// NewFinder constructs an empty driver index.
func NewFinder() *Finder {
	f := &Finder{}
	f.Clear()
	//
	return f
}

// Clear discards the contents of this index.
func (f *Finder) Clear() {
	f.module = nil
	f.drivers = make(map[rtl.SigBit]Bit)
	f.aliases = make(map[rtl.SigBit]rtl.SigBit)
}

// Size returns the number of indexed wire bits.
func (f *Finder) Size() int {
	return len(f.drivers) + len(f.aliases)
}

// Build scans every cell, top-level connection and input port of the given
// module and records the producer of every driven wire bit.
func (f *Finder) Build(module *rtl.Module) error {
	f.Clear()
	f.module = module
	// Coverage masks, for duplicate-driver detection.
	driven := make(map[*rtl.Wire]*bitset.BitSet)
	//
	claim := func(bit rtl.SigBit) error {
		mask, ok := driven[bit.Wire]
		if !ok {
			mask = bitset.New(uint(bit.Wire.Width))
			driven[bit.Wire] = mask
		}
		//
		if mask.Test(uint(bit.Offset)) {
			return errors.Errorf("bit %d of wire \"%s\" has multiple drivers",
				bit.Offset, bit.Wire.Name)
		}
		//
		mask.Set(uint(bit.Offset))
		//
		return nil
	}
	// Module input port bits drive themselves.
	for _, wire := range module.InputPorts() {
		for i := 0; i < wire.Width; i++ {
			bit := rtl.BitOfWire(wire, i)
			//
			if err := claim(bit); err != nil {
				return err
			}
			//
			f.drivers[bit] = Bit{Wire: wire, Offset: i}
		}
	}
	// Cell output ports drive their connected bits.
	for _, cell := range module.Cells() {
		if !cell.HasPort(rtl.PortY) {
			return errors.Errorf("cell \"%s\" has no output port", cell.Name)
		}
		//
		sig := cell.Port(rtl.PortY)
		//
		for i, bit := range sig.Bits() {
			if bit.Wire == nil {
				// A literal on an output connection drives nothing.
				continue
			}
			//
			if err := claim(bit); err != nil {
				return errors.Wrapf(err, "output of cell \"%s\"", cell.Name)
			}
			//
			f.drivers[bit] = Bit{Cell: cell, Port: rtl.PortY, Offset: i}
		}
	}
	// Top-level connections drive their left-hand bits from the right.
	for _, conn := range module.Connections() {
		var (
			lhs = conn.Lhs.Bits()
			rhs = conn.Rhs.Bits()
		)
		//
		for i, bit := range lhs {
			if bit.Wire == nil {
				continue
			}
			//
			if err := claim(bit); err != nil {
				return err
			}
			//
			f.aliases[bit] = rhs[i]
		}
	}
	//
	log.Debugf("driver index for module \"%s\": %d objects", module.Name, f.Size())
	//
	return nil
}

// DriverOfWire returns the driver spec covering every bit of the given wire.
func (f *Finder) DriverOfWire(wire *rtl.Wire) (Spec, error) {
	sig := rtl.SigOfWire(wire)
	return f.DriversOf(&sig)
}

// DriversOf resolves, bit for bit, the producers of the given signal.
// Adjacent bits with the same producer merge into maximal driver chunks.
func (f *Finder) DriversOf(sig *rtl.SigSpec) (Spec, error) {
	var spec Spec
	//
	for _, bit := range sig.Bits() {
		d, err := f.driverOfBit(bit)
		if err != nil {
			return Spec{}, err
		}
		//
		spec.AppendBit(d)
	}
	//
	return spec, nil
}

// driverOfBit resolves the producer of a single bit, following alias chains
// introduced by top-level connections.
func (f *Finder) driverOfBit(bit rtl.SigBit) (Bit, error) {
	if bit.Wire == nil {
		return Bit{Data: bit.Data}, nil
	}
	//
	var seen map[rtl.SigBit]bool
	//
	for {
		if d, ok := f.drivers[bit]; ok {
			return d, nil
		}
		//
		next, ok := f.aliases[bit]
		if !ok {
			return Bit{}, errors.Errorf("bit %d of wire \"%s\" has no driver",
				bit.Offset, bit.Wire.Name)
		} else if next.Wire == nil {
			return Bit{Data: next.Data}, nil
		}
		// Lazily allocated: most chains are short.
		if seen == nil {
			seen = make(map[rtl.SigBit]bool)
		}
		//
		seen[bit] = true
		//
		if seen[next] {
			return Bit{}, errors.Errorf("combinational cycle through bit %d of wire \"%s\"",
				next.Offset, next.Wire.Name)
		}
		//
		bit = next
	}
}
