// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package main

import (
	"runtime/debug"
	"strings"
)

// version describes the binary: the module version,
// then any VCS revision, commit time and dirty flag
// stamped into the build.
func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "version not available"
	}
	return describe(bi)
}

func describe(bi *debug.BuildInfo) string {
	vcs := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		vcs[s.Key] = s.Value
	}
	parts := []string{bi.Main.Version}
	if rev := vcs["vcs.revision"]; rev != "" {
		parts = append(parts, "revision "+rev)
	}
	if at := vcs["vcs.time"]; at != "" {
		parts = append(parts, "committed "+at)
	}
	if vcs["vcs.modified"] == "true" {
		parts = append(parts, "modified")
	}
	return strings.Join(parts, ", ")
}
