// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package address provides the validated Interledger address type used
// for ledger prefixes and account identities.
//
// An address is a sequence of segments separated by '.', for example
// "g.usd.alice". A prefix is an address that ends in '.', for example
// "g.usd.", and names the ledger under which accounts are scoped.
// Segments are restricted to a-z, A-Z, 0-9, '_', '~' and '-'; empty
// segments are never valid.
//
// Account addresses are normally built from the ledger prefix and a
// path typed by a user ([Address.Join]). Join treats the path as
// untrusted input: it rejects traversal segments, separators that
// would produce empty segments, and any result that does not stay
// strictly below the prefix.
//
// [Address] implements encoding.TextMarshaler so it serializes as its
// string form in JSON and CBOR.
package address
