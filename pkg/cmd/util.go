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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-netlift/pkg/rtl"
)

// GetFlag gets an expected boolean flag, or prints the error and exits if one
// arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or prints the error and exits if one
// arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readDesignModule reads a netlist design and resolves the requested module,
// defaulting to the sole module of the design when none is named.
func readDesignModule(filename, name string) *rtl.Module {
	design, err := rtl.ReadJSONFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	if name != "" {
		module := design.Module(name)
		if module == nil {
			fmt.Printf("no module \"%s\" in %s\n", name, filename)
			os.Exit(1)
		}
		//
		return module
	}
	//
	modules := design.Modules()
	if len(modules) != 1 {
		fmt.Printf("%s holds %d modules; pick one with --module\n", filename, len(modules))
		os.Exit(1)
	}
	//
	return modules[0]
}

// resolveWire resolves a wire name within a module.
func resolveWire(module *rtl.Module, name string) *rtl.Wire {
	wire := module.Wire(name)
	if wire == nil {
		fmt.Printf("no wire \"%s\" in module \"%s\"\n", name, module.Name)
		os.Exit(1)
	}
	//
	return wire
}
