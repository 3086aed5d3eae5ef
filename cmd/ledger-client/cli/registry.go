// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode"
)

// Registry is the immutable set of commands available in a session.
// Safe for concurrent reads.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// Entry is one line of the command listing.
type Entry struct {
	Name    string
	Summary string
}

// NewRegistry registers commands in order. Nil commands, empty or
// duplicate names, names containing whitespace and commands without a
// Run function are construction errors.
func NewRegistry(commands ...*Command) (*Registry, error) {
	registry := &Registry{byName: make(map[string]*Command, len(commands))}
	for index, command := range commands {
		if command == nil {
			return nil, fmt.Errorf("command %d is nil", index)
		}
		if command.Name == "" {
			return nil, fmt.Errorf("command %d has an empty name", index)
		}
		if strings.ContainsFunc(command.Name, unicode.IsSpace) {
			return nil, fmt.Errorf("command name %q contains whitespace", command.Name)
		}
		if _, exists := registry.byName[command.Name]; exists {
			return nil, fmt.Errorf("command %q registered twice", command.Name)
		}
		if command.Run == nil {
			return nil, fmt.Errorf("command %q has no Run function", command.Name)
		}
		registry.byName[command.Name] = command
		registry.commands = append(registry.commands, command)
	}
	return registry, nil
}

// Resolve looks up a command by exact, case-sensitive name.
func (r *Registry) Resolve(name string) (*Command, bool) {
	command, ok := r.byName[name]
	return command, ok
}

// Describe returns every command's name and summary in registration
// order.
func (r *Registry) Describe() []Entry {
	entries := make([]Entry, 0, len(r.commands))
	for _, command := range r.commands {
		entries = append(entries, Entry{Name: command.Name, Summary: command.Summary})
	}
	return entries
}

// Suggest returns the registered name closest to name, or "" if none
// is within edit distance 3.
func (r *Registry) Suggest(name string) string {
	names := make([]string, 0, len(r.commands))
	for _, command := range r.commands {
		names = append(names, command.Name)
	}
	return closest(name, names)
}

// WriteListing writes the command listing: one line per command with
// its summary.
func (r *Registry) WriteListing(w io.Writer) {
	styles := NewStyles(w)
	fmt.Fprintln(w, styles.Heading.Render("Commands:"))
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	for _, entry := range r.Describe() {
		fmt.Fprintf(tw, "  %s\t%s\n", styles.Name.Render(entry.Name), entry.Summary)
	}
	tw.Flush()
}

// WriteHelp writes every command with its option schema.
func (r *Registry) WriteHelp(w io.Writer) {
	styles := NewStyles(w)
	for index, command := range r.commands {
		if index > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s\n", styles.Name.Render(command.Name), command.Summary)
		usage := command.Usage
		if usage == "" {
			usage = command.Name
		}
		fmt.Fprintf(w, "  %s\n", usage)
		if options := command.optionHelp(); options != "" {
			for _, line := range strings.Split(strings.TrimRight(options, "\n"), "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}
