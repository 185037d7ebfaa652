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
package lift

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-netlift/pkg/driver"
	"github.com/consensys/go-netlift/pkg/lir"
	"github.com/consensys/go-netlift/pkg/rtl"
)

// Generate synthesises the function computing the value of the given target
// wire of the given module.  The function takes every module input port, in
// declaration order, as an integer argument of the port's width, and returns
// the combinational value driving the target.  The constructed IR module is
// available through IRModule afterwards.
func (g *Generator) Generate(module *rtl.Module, target *rtl.Wire, funcName string) (*lir.Function, error) {
	if target.Module != module {
		return nil, errors.Errorf("wire \"%s\" does not belong to module \"%s\"",
			target.Name, module.Name)
	} else if target.Width == 0 {
		return nil, errors.Errorf("target wire \"%s\" has width 0", target.Name)
	}
	// The driver index is built once per module and reused across targets;
	// the value cache never is, so that IR nodes are not shared across
	// emissions.
	if g.module != module {
		log.Debugf("building driver index for module \"%s\"", module.Name)
		//
		if err := g.finder.Build(module); err != nil {
			return nil, err
		}
		//
		g.module = module
	}
	//
	g.cache.Clear()
	g.active = make(map[*rtl.Cell]bool)
	//
	if funcName == "" {
		funcName = "instr_" + sanitizeName(target.Name)
	}
	//
	g.irModule = lir.NewModule("mod_" + module.Name + "_" + target.Name)
	fn := g.irModule.NewFunction(funcName, lir.IntType(target.Width))
	g.builder.SetInsertPoint(fn)
	// Declare one argument per input port and seed the cache with it, so
	// that input wires resolve to their arguments during generation.
	for _, port := range module.InputPorts() {
		if port.Width == 0 {
			log.Warnf("skipping zero-width input port \"%s\"", port.Name)
			continue
		}
		//
		arg := fn.AddParam(sanitizeName(port.Name), lir.IntType(port.Width))
		g.cacheAdd(driver.SpecOfWire(port), arg)
	}
	// Collect the drivers of each bit of the target wire.
	dSpec, err := g.finder.DriverOfWire(target)
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("drivers of target \"%s\": %s", target.Name, dSpec.String())
	//
	val, err := g.generateValue(&dSpec)
	if err != nil {
		return nil, err
	}
	//
	g.builder.CreateRet(val)
	//
	log.Debugf("%d values in cache after generating \"%s\"", g.cache.Size(), funcName)
	//
	if err := fn.Verify(); err != nil {
		return nil, err
	}
	//
	if err := g.irModule.Verify(); err != nil {
		return nil, err
	}
	//
	return fn, nil
}

// WriteIRFile generates the function for the given target and serialises the
// resulting IR module to the given file, overwriting any existing contents.
func (g *Generator) WriteIRFile(module *rtl.Module, target *rtl.Wire, funcName, filename string) error {
	if _, err := g.Generate(module, target, funcName); err != nil {
		return err
	}
	//
	return g.irModule.WriteFile(filename)
}
