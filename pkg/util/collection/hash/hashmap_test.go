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
package hash

import (
	"testing"
)

// colliderKey hashes everything into one of two buckets, forcing collisions.
type colliderKey struct {
	value uint
}

func (k colliderKey) Equals(other colliderKey) bool {
	return k.value == other.value
}

func (k colliderKey) Hash() uint64 {
	return uint64(k.value % 2)
}

func Test_HashMap_01(t *testing.T) {
	m := NewMap[colliderKey, string](16)
	//
	if m.Insert(colliderKey{1}, "one") {
		t.Error("fresh insert reported as existing")
	}
	//
	if !m.Insert(colliderKey{1}, "uno") {
		t.Error("repeat insert not reported")
	}
	//
	if v, ok := m.Get(colliderKey{1}); !ok || v != "uno" {
		t.Errorf("lookup gave (%s, %v)", v, ok)
	}
	//
	if m.Size() != 1 {
		t.Errorf("size %d", m.Size())
	}
}

func Test_HashMap_02(t *testing.T) {
	// Colliding keys are kept apart.
	m := NewMap[colliderKey, uint](16)
	//
	for i := uint(0); i < 100; i++ {
		m.Insert(colliderKey{i}, i*i)
	}
	//
	if m.Size() != 100 {
		t.Errorf("size %d", m.Size())
	}
	//
	for i := uint(0); i < 100; i++ {
		if v, ok := m.Get(colliderKey{i}); !ok || v != i*i {
			t.Errorf("lookup of %d gave (%d, %v)", i, v, ok)
		}
	}
	//
	if m.ContainsKey(colliderKey{200}) {
		t.Error("absent key reported present")
	}
}

func Test_HashMap_03(t *testing.T) {
	m := NewMap[colliderKey, uint](4)
	m.Insert(colliderKey{1}, 1)
	m.Clear()
	//
	if m.Size() != 0 || m.ContainsKey(colliderKey{1}) {
		t.Error("clear left contents behind")
	}
}
