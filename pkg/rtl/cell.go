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

// Standard port names for builtin combinational cells.  All supported cells
// drive their result onto Y; multiplexers additionally read their select
// input from S.
const (
	PortA = "A"
	PortB = "B"
	PortS = "S"
	PortY = "Y"
)

// Standard width-defining parameter names for builtin combinational cells.
const (
	ParamAWidth  = "A_WIDTH"
	ParamBWidth  = "B_WIDTH"
	ParamSWidth  = "S_WIDTH"
	ParamYWidth  = "Y_WIDTH"
	ParamWidth   = "WIDTH"
	ParamASigned = "A_SIGNED"
	ParamBSigned = "B_SIGNED"
)

// Cell is a combinational primitive of known type, with a mapping from port
// names to the signals connected there, along with its width-defining
// parameters.
type Cell struct {
	// Name of this cell, unique within its module.
	Name string
	// Type identifies the primitive this cell instantiates (e.g. "$add").
	Type string
	// Module owning this cell.
	Module *Module
	// Parameters of this cell (e.g. A_WIDTH).
	Parameters map[string]Const
	// connections maps port names to connected signals.
	connections map[string]SigSpec
}

// HasPort checks whether the given port is connected on this cell.
func (c *Cell) HasPort(port string) bool {
	_, ok := c.connections[port]
	return ok
}

// Port returns the signal connected to the given port, which must exist.
func (c *Cell) Port(port string) SigSpec {
	sig, ok := c.connections[port]
	if !ok {
		panic(fmt.Sprintf("cell \"%s\" has no port \"%s\"", c.Name, port))
	}
	//
	return sig
}

// SetPort connects a signal to the given port of this cell.
func (c *Cell) SetPort(port string, sig SigSpec) {
	c.connections[port] = sig
}

// NumPorts returns the number of connected ports.
func (c *Cell) NumPorts() int {
	return len(c.connections)
}

// Output indicates whether the given port is an output of this cell.  All
// supported builtin cells drive exactly the Y port.
func (c *Cell) Output(port string) bool {
	return port == PortY
}

// Input indicates whether the given port is an input of this cell.
func (c *Cell) Input(port string) bool {
	return port != PortY
}

// HasParam checks whether the given parameter is present on this cell.
func (c *Cell) HasParam(name string) bool {
	_, ok := c.Parameters[name]
	return ok
}

// ParamInt returns the given parameter interpreted as an unsigned integer,
// which must exist.
func (c *Cell) ParamInt(name string) int {
	p, ok := c.Parameters[name]
	if !ok {
		panic(fmt.Sprintf("cell \"%s\" has no parameter \"%s\"", c.Name, name))
	}
	//
	return int(p.AsUint())
}

// ParamBool returns the given parameter interpreted as a boolean, defaulting
// to false when absent.
func (c *Cell) ParamBool(name string) bool {
	if p, ok := c.Parameters[name]; ok {
		return p.AsBool()
	}
	//
	return false
}

func (c *Cell) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Type)
}
