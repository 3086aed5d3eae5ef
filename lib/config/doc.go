// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the ledger client's configuration file.
//
// The file is located by the --config flag or the LEDGER_CLIENT_CONFIG
// environment variable; there is no discovery. YAML is the native
// format. Files ending in .json or .jsonc are accepted too: comments
// and trailing commas are stripped with tidwall/jsonc and the result
// is parsed as YAML, which is a superset of JSON.
//
// A file may contain development, staging and production sections
// whose non-empty values override the base values when the top-level
// environment matches. ${VAR} and ${VAR:-default} references in ledger
// credentials and URLs are expanded from the process environment so
// secrets can stay out of the file.
package config
