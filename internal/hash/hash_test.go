/*
Copyright © 2020 the EnsFlow authors.
This file is part of EnsFlow.

EnsFlow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EnsFlow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EnsFlow.  If not, see <http://www.gnu.org/licenses/>.
*/

package hash

import (
	"testing"

	"github.com/spatialmodel/ensflow"
)

func TestKey(t *testing.T) {
	a := ensflow.DefaultConfig()
	b := ensflow.DefaultConfig()
	if Key(a) != Key(b) {
		t.Error("equal configurations should have equal keys")
	}
	if len(Key(a)) != 32 {
		t.Errorf("key %q should have 32 hex digits", Key(a))
	}
	b.Forecast.Seed++
	if Key(a) == Key(b) {
		t.Error("different configurations should have different keys")
	}
}

type opaque struct {
	v float64
}

func TestKeyFallback(t *testing.T) {
	if Key(opaque{1}) == Key(opaque{2}) {
		t.Error("values that gob cannot encode should still be distinguished")
	}
	if Key(opaque{1}) != Key(opaque{1}) {
		t.Error("keys should be deterministic")
	}
}
