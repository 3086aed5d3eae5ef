// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// normalizeArgs rewrites single-dash long options ("-to alice",
// "-amount=5") to the double-dash form pflag expects. A single dash
// followed by one character is a shorthand and left alone, as is a
// cluster of shorthands whose first letter is defined. Tokens consumed
// as an option's value are never rewritten, so "--memo -to" keeps
// "-to" as the memo.
func normalizeArgs(args []string, flagSet *pflag.FlagSet) []string {
	normalized := make([]string, 0, len(args))

	for index := 0; index < len(args); index++ {
		arg := args[index]

		if arg == "--" {
			normalized = append(normalized, args[index:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			normalized = append(normalized, arg)
			continue
		}

		body := strings.TrimPrefix(arg, "-")
		singleDash := !strings.HasPrefix(body, "-")
		body = strings.TrimPrefix(body, "-")
		name, _, hasValue := strings.Cut(body, "=")

		if singleDash && len(name) <= 1 {
			normalized = append(normalized, arg)
			continue
		}

		flag := flagSet.Lookup(name)
		if singleDash {
			if flag == nil && flagSet.ShorthandLookup(name[:1]) != nil {
				normalized = append(normalized, arg)
				continue
			}
			arg = "-" + arg
		}
		normalized = append(normalized, arg)
		if flag == nil {
			continue
		}

		// A non-boolean option without "=value" takes the next token.
		if !hasValue && flag.NoOptDefVal == "" && index+1 < len(args) {
			index++
			normalized = append(normalized, args[index])
		}
	}

	return normalized
}
