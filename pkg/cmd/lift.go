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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-netlift/pkg/lift"
)

var liftCmd = &cobra.Command{
	Use:   "lift [flags] netlist_file",
	Short: "lift a netlist wire into an IR function.",
	Long: `Lift the combinational cone of a designated wire into a pure function over
	 the module input ports, written as a textual IR file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		module := readDesignModule(args[0], GetString(cmd, "module"))
		target := resolveWire(module, GetString(cmd, "target"))
		output := GetString(cmd, "output")
		//
		generator := lift.NewGenerator(liftOptions(cmd))
		//
		if err := generator.WriteIRFile(module, target, GetString(cmd, "func-name"), output); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		log.Infof("wrote %s", output)
	},
}

// liftOptions assembles generator options from the command line.
func liftOptions(cmd *cobra.Command) lift.Options {
	opts := lift.DefaultOptions()
	opts.VerboseValueNames = GetFlag(cmd, "verbose-value-names")
	opts.CellBasedValueNames = GetFlag(cmd, "cell-based-value-names")
	opts.SimplifyAndOrGates = GetFlag(cmd, "simplify-and-or-gates")
	opts.SimplifyMuxes = GetFlag(cmd, "simplify-muxes")
	opts.UsePoison = GetFlag(cmd, "use-poison")
	//
	return opts
}

// registerLiftFlags declares the generator option flags shared by the lift
// and eval commands.
func registerLiftFlags(cmd *cobra.Command) {
	cmd.Flags().String("module", "", "name of the module to process")
	cmd.Flags().String("target", "", "name of the target wire")
	cmd.Flags().String("func-name", "", "name of the generated function")
	cmd.Flags().Bool("verbose-value-names", false, "annotate values with their driver spec")
	cmd.Flags().Bool("cell-based-value-names", true, "name values after their producing cell")
	cmd.Flags().Bool("simplify-and-or-gates", true, "apply and/or algebraic identities")
	cmd.Flags().Bool("simplify-muxes", true, "fold muxes with constant or equal inputs")
	cmd.Flags().Bool("use-poison", false, "emit poison rather than zero for x-ish inputs")
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(liftCmd)
	registerLiftFlags(liftCmd)
	liftCmd.Flags().StringP("output", "o", "a.ll", "specify output file.")
	liftCmd.MarkFlagRequired("target")
}
