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

import "fmt"

// Connection is a top-level assignment of one signal to another; every bit of
// the left-hand side is driven by the corresponding bit of the right-hand
// side.
type Connection struct {
	Lhs SigSpec
	Rhs SigSpec
}

// Module is an elaborated netlist module: a collection of wires, ports,
// combinational cells and top-level connections.  Modules processed by this
// package are assumed to be fully unrolled, i.e. free of sequential elements.
type Module struct {
	// Name of this module.
	Name string
	// wires maps wire names to wires.
	wires map[string]*Wire
	// wireList holds all wires in declaration order.
	wireList []*Wire
	// ports holds the module ports in declaration order.
	ports []*Wire
	// cells holds all cells in declaration order.
	cells []*Cell
	// connections holds all top-level assignments.
	connections []Connection
}

// NewModule constructs a fresh module with the given name.
func NewModule(name string) *Module {
	return &Module{
		Name:  name,
		wires: make(map[string]*Wire),
	}
}

// NewWire declares a new wire within this module, panicking if a wire of the
// same name already exists.
func (m *Module) NewWire(name string, width int) *Wire {
	if _, ok := m.wires[name]; ok {
		panic(fmt.Sprintf("wire \"%s\" already declared in module \"%s\"", name, m.Name))
	} else if width < 0 {
		panic(fmt.Sprintf("wire \"%s\" has negative width %d", name, width))
	}
	//
	w := &Wire{Name: name, Width: width, PortId: -1, Module: m}
	m.wires[name] = w
	m.wireList = append(m.wireList, w)
	//
	return w
}

// MarkPort records the given wire as the next module port in declaration
// order.  The wire's direction flags must already be set.
func (m *Module) MarkPort(w *Wire) {
	if !w.IsPort() {
		panic(fmt.Sprintf("wire \"%s\" has no port direction", w.Name))
	}
	//
	w.PortId = len(m.ports)
	m.ports = append(m.ports, w)
}

// NewCell declares a new cell of the given type within this module,
// panicking if a cell of the same name already exists.
func (m *Module) NewCell(name, ctype string) *Cell {
	for _, c := range m.cells {
		if c.Name == name {
			panic(fmt.Sprintf("cell \"%s\" already declared in module \"%s\"", name, m.Name))
		}
	}
	//
	c := &Cell{
		Name:        name,
		Type:        ctype,
		Module:      m,
		Parameters:  make(map[string]Const),
		connections: make(map[string]SigSpec),
	}
	m.cells = append(m.cells, c)
	//
	return c
}

// Connect records a top-level assignment driving lhs from rhs.  Both sides
// must have identical width.
func (m *Module) Connect(lhs, rhs SigSpec) {
	if lhs.Width() != rhs.Width() {
		panic(fmt.Sprintf("connection width mismatch in module \"%s\" (%d vs %d)",
			m.Name, lhs.Width(), rhs.Width()))
	}
	//
	m.connections = append(m.connections, Connection{lhs, rhs})
}

// Wire returns the wire of the given name, or nil if no such wire exists.
func (m *Module) Wire(name string) *Wire {
	return m.wires[name]
}

// Wires returns all wires of this module in declaration order.
func (m *Module) Wires() []*Wire {
	return m.wireList
}

// Ports returns the module ports in declaration order.
func (m *Module) Ports() []*Wire {
	return m.ports
}

// InputPorts returns the module input ports in declaration order.
func (m *Module) InputPorts() []*Wire {
	var inputs []*Wire
	//
	for _, p := range m.ports {
		if p.PortInput {
			inputs = append(inputs, p)
		}
	}
	//
	return inputs
}

// Cells returns all cells of this module in declaration order.
func (m *Module) Cells() []*Cell {
	return m.cells
}

// Connections returns all top-level assignments of this module.
func (m *Module) Connections() []Connection {
	return m.connections
}
