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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A 4-bit adder as written by yosys write_json, trimmed to the fields the
// reader consumes.
var adderJSON = []byte(`{
  "creator": "Yosys",
  "modules": {
    "adder": {
      "ports": {
        "a": { "direction": "input", "bits": [2, 3, 4, 5] },
        "b": { "direction": "input", "bits": [6, 7, 8, 9] },
        "y": { "direction": "output", "bits": [10, 11, 12, 13] }
      },
      "cells": {
        "$add$adder.v:7$1": {
          "type": "$add",
          "parameters": {
            "A_SIGNED": "00000000000000000000000000000000",
            "A_WIDTH": "00000000000000000000000000000100",
            "B_SIGNED": "00000000000000000000000000000000",
            "B_WIDTH": "00000000000000000000000000000100",
            "Y_WIDTH": "00000000000000000000000000000100"
          },
          "port_directions": { "A": "input", "B": "input", "Y": "output" },
          "connections": { "A": [2, 3, 4, 5], "B": [6, 7, 8, 9], "Y": [10, 11, 12, 13] }
        }
      },
      "netnames": {
        "a": { "bits": [2, 3, 4, 5] },
        "b": { "bits": [6, 7, 8, 9] },
        "sum": { "bits": [10, 11, 12, 13] },
        "y": { "bits": [10, 11, 12, 13] }
      }
    }
  }
}`)

func Test_JSON_01(t *testing.T) {
	design, err := ReadJSON(adderJSON)
	require.NoError(t, err)
	//
	module := design.Module("adder")
	require.NotNil(t, module)
	// Ports appear in declaration order.
	ports := module.Ports()
	require.Len(t, ports, 3)
	assert.Equal(t, "a", ports[0].Name)
	assert.Equal(t, "b", ports[1].Name)
	assert.Equal(t, "y", ports[2].Name)
	assert.True(t, ports[0].PortInput)
	assert.True(t, ports[2].PortOutput)
	assert.Equal(t, 4, ports[0].Width)
}

func Test_JSON_02(t *testing.T) {
	design, err := ReadJSON(adderJSON)
	require.NoError(t, err)
	//
	module := design.Module("adder")
	cells := module.Cells()
	require.Len(t, cells, 1)
	//
	cell := cells[0]
	assert.Equal(t, "$add", cell.Type)
	assert.Equal(t, 4, cell.ParamInt(ParamAWidth))
	assert.False(t, cell.ParamBool(ParamASigned))
	// The cell output connects to the canonical wire of its net bits.
	sigY := cell.Port(PortY)
	expected := SigOfWire(module.Wire("y"))
	assert.True(t, sigY.Equals(&expected))
}

func Test_JSON_03(t *testing.T) {
	design, err := ReadJSON(adderJSON)
	require.NoError(t, err)
	//
	module := design.Module("adder")
	// "sum" aliases the same net bits as "y" and becomes a connection.
	sum := module.Wire("sum")
	require.NotNil(t, sum)
	//
	conns := module.Connections()
	require.Len(t, conns, 1)
	//
	lhs := SigOfWire(sum)
	rhs := SigOfWire(module.Wire("y"))
	assert.True(t, conns[0].Lhs.Equals(&lhs))
	assert.True(t, conns[0].Rhs.Equals(&rhs))
}

func Test_JSON_04(t *testing.T) {
	// Constant bits in connections parse into literal chunks.
	design, err := ReadJSON([]byte(`{
	  "modules": {
	    "m": {
	      "ports": {
	        "a": { "direction": "input", "bits": [2, 3] },
	        "y": { "direction": "output", "bits": [2, 3, "1", "0"] }
	      },
	      "netnames": { "a": { "bits": [2, 3] }, "y": { "bits": [2, 3, "1", "0"] } }
	    }
	  }
	}`))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	module := design.Module("m")
	conns := module.Connections()
	//
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(conns))
	}
	// y[3:2] is driven by constant bits 01.
	rhs := conns[0].Rhs.Extract(2, 2)
	//
	if rhs.AsString() != "01" {
		t.Errorf("constant bits parsed as %s", rhs.AsString())
	}
}

func Test_JSON_05(t *testing.T) {
	// Malformed documents report errors rather than panicking.
	for _, doc := range []string{
		`{`,
		`{"modules": 5}`,
		`{"modules": {"m": {"ports": {"p": {"direction": "sideways", "bits": [2]}}}}}`,
		`{"modules": {"m": {"ports": {}, "cells": {"c": {"type": "$add",
		  "connections": {"A": [99]}}}}}}`,
	} {
		if _, err := ReadJSON([]byte(doc)); err == nil {
			t.Errorf("document %s read without error", doc)
		}
	}
}
