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

// Package ensflow holds the static problem definition of an ensemble
// reservoir-flow experiment (a structured grid forced by injection and
// production wells) together with a generic forecast driver and spatial
// correlation diagnostics for ensembles of model states.
//
// The physical model itself is supplied by the caller as a StepOperator;
// statistics on the resulting ensembles live in the ensemble sub-package.
package ensflow

// Version gives the version number.
const Version = "0.3.0"
