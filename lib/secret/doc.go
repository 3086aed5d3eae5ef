// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds credentials, such as the five-bells ledger
// password, in memory outside the Go heap.
//
// A [Buffer] is backed by an anonymous mmap region that is locked into
// RAM (mlock), excluded from core dumps (MADV_DONTDUMP) and zeroed on
// Close. The garbage collector never sees the region, so it cannot copy
// the secret elsewhere. Construct one with [NewFromBytes], which zeros
// the caller's slice, or [ReadFile] for a password file.
//
// Depends on golang.org/x/sys/unix.
package secret
