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
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Design is a collection of named modules, as read from a netlist file.
type Design struct {
	modules map[string]*Module
	names   []string
}

// Module returns the module of the given name, or nil if no such module
// exists.
func (d *Design) Module(name string) *Module {
	return d.modules[name]
}

// Modules returns all modules of this design in file order.
func (d *Design) Modules() []*Module {
	var mods []*Module
	//
	for _, n := range d.names {
		mods = append(mods, d.modules[n])
	}
	//
	return mods
}

// ReadJSONFile reads a design in Yosys JSON netlist format (as produced by
// "yosys -o design.json" or the write_json command) from the given file.
func ReadJSONFile(filename string) (*Design, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	//
	return ReadJSON(data)
}

// ReadJSON reads a design in Yosys JSON netlist format.
func ReadJSON(data []byte) (*Design, error) {
	var top struct {
		Modules json.RawMessage `json:"modules"`
	}
	//
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(err, "malformed netlist JSON")
	} else if top.Modules == nil {
		return nil, errors.New("netlist JSON has no modules")
	}
	//
	design := &Design{modules: make(map[string]*Module)}
	//
	rawModules, err := orderedObject(top.Modules)
	if err != nil {
		return nil, errors.Wrap(err, "malformed modules object")
	}
	//
	for _, entry := range rawModules {
		module, err := readJSONModule(entry.name, entry.raw)
		if err != nil {
			return nil, errors.Wrapf(err, "module \"%s\"", entry.name)
		}
		//
		design.modules[entry.name] = module
		design.names = append(design.names, entry.name)
	}
	//
	return design, nil
}

// ============================================================================
// Internals
// ============================================================================

type jsonEntry struct {
	name string
	raw  json.RawMessage
}

// orderedObject decodes a JSON object into its entries, preserving the key
// order of the file.  This matters for ports, whose declaration order defines
// the generated function signature.
func orderedObject(raw json.RawMessage) ([]jsonEntry, error) {
	var entries []jsonEntry
	//
	dec := json.NewDecoder(bytes.NewReader(raw))
	//
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	} else if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected JSON object")
	}
	//
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		//
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected JSON object key")
		}
		//
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		//
		entries = append(entries, jsonEntry{key, value})
	}
	//
	return entries, nil
}

type jsonPort struct {
	Direction string `json:"direction"`
	Bits      []any  `json:"bits"`
}

type jsonNet struct {
	Bits []any `json:"bits"`
}

type jsonCell struct {
	Type        string          `json:"type"`
	Parameters  map[string]any  `json:"parameters"`
	Connections json.RawMessage `json:"connections"`
}

func readJSONModule(name string, raw json.RawMessage) (*Module, error) {
	var body struct {
		Ports    json.RawMessage `json:"ports"`
		Cells    json.RawMessage `json:"cells"`
		Netnames json.RawMessage `json:"netnames"`
	}
	//
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	//
	module := NewModule(name)
	// Canonical owner of every net bit id.
	owners := make(map[int64]SigBit)
	// Wires in port order then net order, with their bit arrays.
	type pending struct {
		wire *Wire
		bits []any
	}
	//
	var wires []pending
	// First the ports, in declaration order.
	ports, err := orderedObject(body.Ports)
	if err != nil {
		return nil, errors.Wrap(err, "malformed ports")
	}
	//
	for _, entry := range ports {
		var port jsonPort
		if err := json.Unmarshal(entry.raw, &port); err != nil {
			return nil, errors.Wrapf(err, "port \"%s\"", entry.name)
		}
		//
		wire := module.NewWire(entry.name, len(port.Bits))
		//
		switch port.Direction {
		case "input":
			wire.PortInput = true
		case "output":
			wire.PortOutput = true
		case "inout":
			wire.PortInput = true
			wire.PortOutput = true
		default:
			return nil, errors.Errorf("port \"%s\" has unknown direction \"%s\"",
				entry.name, port.Direction)
		}
		//
		module.MarkPort(wire)
		wires = append(wires, pending{wire, port.Bits})
	}
	// Then the internal nets.
	if body.Netnames != nil {
		nets, err := orderedObject(body.Netnames)
		if err != nil {
			return nil, errors.Wrap(err, "malformed netnames")
		}
		//
		for _, entry := range nets {
			if module.Wire(entry.name) != nil {
				continue // already declared as a port
			}
			//
			var net jsonNet
			if err := json.Unmarshal(entry.raw, &net); err != nil {
				return nil, errors.Wrapf(err, "net \"%s\"", entry.name)
			}
			//
			wire := module.NewWire(entry.name, len(net.Bits))
			wires = append(wires, pending{wire, net.Bits})
		}
	}
	// Claim canonical ownership of net bits, first come first served.
	for _, p := range wires {
		for i, elem := range p.bits {
			if id, ok := netBitId(elem); ok {
				if _, claimed := owners[id]; !claimed {
					owners[id] = BitOfWire(p.wire, i)
				}
			}
		}
	}
	// Connect aliased or constant-driven wires to their sources.
	for _, p := range wires {
		rhs, err := sigOfNetBits(p.bits, owners)
		if err != nil {
			return nil, errors.Wrapf(err, "net \"%s\"", p.wire.Name)
		}
		//
		lhs := SigOfWire(p.wire)
		if !lhs.Equals(&rhs) {
			module.Connect(lhs, rhs)
		}
	}
	// Finally the cells.
	if body.Cells != nil {
		cells, err := orderedObject(body.Cells)
		if err != nil {
			return nil, errors.Wrap(err, "malformed cells")
		}
		//
		for _, entry := range cells {
			if err := readJSONCell(module, entry.name, entry.raw, owners); err != nil {
				return nil, errors.Wrapf(err, "cell \"%s\"", entry.name)
			}
		}
	}
	//
	return module, nil
}

func readJSONCell(module *Module, name string, raw json.RawMessage, owners map[int64]SigBit) error {
	var body jsonCell
	//
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	} else if body.Type == "" {
		return errors.New("cell has no type")
	}
	//
	cell := module.NewCell(name, body.Type)
	//
	for pname, pvalue := range body.Parameters {
		value, err := paramConst(pvalue)
		if err != nil {
			return errors.Wrapf(err, "parameter \"%s\"", pname)
		}
		//
		cell.Parameters[pname] = value
	}
	//
	if body.Connections == nil {
		return nil
	}
	//
	conns, err := orderedObject(body.Connections)
	if err != nil {
		return errors.Wrap(err, "malformed connections")
	}
	//
	for _, entry := range conns {
		var bits []any
		if err := json.Unmarshal(entry.raw, &bits); err != nil {
			return errors.Wrapf(err, "connection \"%s\"", entry.name)
		}
		//
		sig, err := sigOfNetBits(bits, owners)
		if err != nil {
			return errors.Wrapf(err, "connection \"%s\"", entry.name)
		}
		//
		cell.SetPort(entry.name, sig)
	}
	//
	return nil
}

// netBitId extracts a net bit id from a bits array element, returning false
// for constant elements.
func netBitId(elem any) (int64, bool) {
	if f, ok := elem.(float64); ok {
		return int64(f), true
	}
	//
	return 0, false
}

// sigOfNetBits builds a signal from a JSON bits array, resolving net ids
// against their canonical owners and constant strings to literal bits.
func sigOfNetBits(bits []any, owners map[int64]SigBit) (SigSpec, error) {
	var sig SigSpec
	//
	for _, elem := range bits {
		switch elem := elem.(type) {
		case float64:
			bit, ok := owners[int64(elem)]
			if !ok {
				return SigSpec{}, errors.Errorf("undeclared net bit %d", int64(elem))
			}
			//
			sig.AppendBit(bit)
		case string:
			if len(elem) != 1 {
				return SigSpec{}, errors.Errorf("malformed constant bit \"%s\"", elem)
			}
			//
			s, ok := StateOfRune(rune(elem[0]))
			if !ok {
				return SigSpec{}, errors.Errorf("malformed constant bit \"%s\"", elem)
			}
			//
			sig.AppendBit(BitOfState(s))
		default:
			return SigSpec{}, errors.Errorf("malformed net bit %v", elem)
		}
	}
	//
	return sig, nil
}

// paramConst decodes a cell parameter value.  Yosys writes 32-bit values as
// JSON numbers and anything wider (or x-ish) as a binary string.
func paramConst(value any) (Const, error) {
	switch value := value.(type) {
	case float64:
		return ConstOfUint(uint64(int64(value)), 32), nil
	case string:
		c, ok := ConstOfString(value)
		if !ok {
			return Const{}, errors.Errorf("malformed parameter value \"%s\"", value)
		}
		//
		return c, nil
	}
	//
	return Const{}, errors.Errorf("malformed parameter value %v", value)
}
