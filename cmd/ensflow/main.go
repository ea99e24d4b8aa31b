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

// Command ensflow is a command-line interface for the EnsFlow
// ensemble forecast engine.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/ensflow/ensflowutil"
)

func main() {
	if err := ensflowutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
