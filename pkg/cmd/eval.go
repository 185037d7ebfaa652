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
	"math/big"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-netlift/pkg/lift"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] netlist_file [input=value...]",
	Short: "lift a netlist wire and evaluate it on literal inputs.",
	Long: `Lift the combinational cone of a designated wire and evaluate the resulting
	 function on the given input assignment.  Inputs are given as name=value
	 pairs; values accept the usual 0x/0b prefixes and unassigned inputs read
	 as zero.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		module := readDesignModule(args[0], GetString(cmd, "module"))
		target := resolveWire(module, GetString(cmd, "target"))
		inputs := parseAssignment(args[1:])
		//
		generator := lift.NewGenerator(liftOptions(cmd))
		//
		fn, err := generator.Generate(module, target, GetString(cmd, "func-name"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Marshal the assignment into positional arguments.
		values := make([]*big.Int, len(fn.Params()))
		//
		for i, param := range fn.Params() {
			if val, ok := inputs[param.Name()]; ok {
				values[i] = val
				delete(inputs, param.Name())
			} else {
				values[i] = big.NewInt(0)
			}
		}
		//
		for name := range inputs {
			log.Warnf("ignoring assignment to unknown input \"%s\"", name)
		}
		//
		result, err := fn.Eval(values...)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		fmt.Printf("%s = 0x%s (%s)\n", target.Name, result.Text(16), result.Text(10))
	},
}

// parseAssignment parses name=value pairs into an input assignment.
func parseAssignment(items []string) map[string]*big.Int {
	assignment := make(map[string]*big.Int)
	//
	for _, item := range items {
		split := strings.Split(item, "=")
		if len(split) != 2 {
			fmt.Printf("malformed assignment \"%s\"\n", item)
			os.Exit(2)
		}
		//
		val, ok := new(big.Int).SetString(split[1], 0)
		if !ok {
			fmt.Printf("malformed value in \"%s\"\n", item)
			os.Exit(2)
		}
		//
		assignment[split[0]] = val
	}
	//
	return assignment
}

func init() {
	rootCmd.AddCommand(evalCmd)
	registerLiftFlags(evalCmd)
}
