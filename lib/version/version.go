// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Program is the name the client reports in version output and in
// the User-Agent of its ledger requests.
const Program = "ledger-client"

// Overridden with -ldflags "-X .../lib/version.Version=..." at release.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info returns the version, commit and build time on one line.
func Info() string {
	return fmt.Sprintf("%s %s (%s, %s)", Program, Version, GitCommit, BuildTime)
}

// Full extends Info with the toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent returns the HTTP User-Agent value, e.g.
// "ledger-client/0.1.0-dev (linux/amd64)".
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s)", Program, Version, runtime.GOOS, runtime.GOARCH)
}
