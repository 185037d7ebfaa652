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
package lir

import (
	"fmt"
)

// Function is a pure function of integer parameters with a single basic
// block and a single return.
type Function struct {
	name    string
	params  []*Param
	instrs  []*Instr
	retType Type
	ret     Value
}

// Name returns the name of this function.
func (f *Function) Name() string {
	return f.name
}

// AddParam declares a new parameter of this function, in positional order.
func (f *Function) AddParam(name string, typ Type) *Param {
	p := &Param{name, typ}
	f.params = append(f.params, p)
	//
	return p
}

// Params returns the parameters of this function in positional order.
func (f *Function) Params() []*Param {
	return f.params
}

// Instrs returns the instructions of this function in emission order.
func (f *Function) Instrs() []*Instr {
	return f.instrs
}

// ReturnType returns the declared return type of this function.
func (f *Function) ReturnType() Type {
	return f.retType
}

// Return returns the returned value, or nil if no return has been appended.
func (f *Function) Return() Value {
	return f.ret
}

// Module is a collection of functions, serializable as one text file.
type Module struct {
	name  string
	funcs []*Function
}

// NewModule constructs a fresh, empty module with the given name.
func NewModule(name string) *Module {
	return &Module{name: name}
}

// Name returns the name of this module.
func (m *Module) Name() string {
	return m.name
}

// NewFunction declares a new function within this module, panicking if a
// function of the same name already exists.
func (m *Module) NewFunction(name string, retType Type) *Function {
	if m.Function(name) != nil {
		panic(fmt.Sprintf("function \"%s\" already declared", name))
	}
	//
	f := &Function{name: name, retType: retType}
	m.funcs = append(m.funcs, f)
	//
	return f
}

// Function returns the function of the given name, or nil if no such
// function exists.
func (m *Module) Function(name string) *Function {
	for _, f := range m.funcs {
		if f.name == name {
			return f
		}
	}
	//
	return nil
}

// Functions returns all functions of this module in declaration order.
func (m *Module) Functions() []*Function {
	return m.funcs
}
