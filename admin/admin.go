// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package admin runs the secondary HTTP servlet carrying metrics, a
// healthcheck and (gated) pprof handlers. These stay off the public
// router: profiles and dumps can contain account data.
package admin

import (
	"runtime"
)

// Init is the entrypoint into the admin package. It will
// configure the runtime.
func Init() error {
	if pprofProfileEnabled("block", true) {
		runtime.SetBlockProfileRate(1)
	}
	if pprofProfileEnabled("mutex", true) {
		runtime.SetMutexProfileFraction(1)
	}
	return nil
}
