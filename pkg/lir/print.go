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
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// String serializes this module in LLVM-compatible textual form.
func (m *Module) String() string {
	var (
		r      strings.Builder
		ctpops = make(map[int]bool)
	)
	//
	fmt.Fprintf(&r, "; ModuleID = '%s'\n", m.name)
	//
	for _, f := range m.funcs {
		r.WriteString("\n")
		f.write(&r)
		//
		for _, instr := range f.instrs {
			if instr.op == OpCtPop {
				ctpops[instr.typ.Width()] = true
			}
		}
	}
	// Declare any intrinsics used.
	widths := make([]int, 0, len(ctpops))
	for w := range ctpops {
		widths = append(widths, w)
	}
	//
	sort.Ints(widths)
	//
	for _, w := range widths {
		fmt.Fprintf(&r, "\ndeclare i%d @llvm.ctpop.i%d(i%d)\n", w, w, w)
	}
	//
	return r.String()
}

// WriteFile serializes this module to the given file, overwriting any
// existing contents.
func (m *Module) WriteFile(filename string) error {
	if err := os.WriteFile(filename, []byte(m.String()), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", filename)
	}
	//
	return nil
}

func (f *Function) write(r *strings.Builder) {
	fmt.Fprintf(r, "define %s @%s(", f.retType, f.name)
	//
	for i, p := range f.params {
		if i != 0 {
			r.WriteString(", ")
		}
		//
		fmt.Fprintf(r, "%s %%%s", p.typ, p.name)
	}
	//
	r.WriteString(") {\nentry:\n")
	//
	for _, instr := range f.instrs {
		fmt.Fprintf(r, "  %s\n", instr)
	}
	//
	if f.ret != nil {
		fmt.Fprintf(r, "  ret %s %s\n", f.retType, f.ret.operand())
	}
	//
	r.WriteString("}\n")
}

func (f *Function) String() string {
	var r strings.Builder
	f.write(&r)
	//
	return r.String()
}
