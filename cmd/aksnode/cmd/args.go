package cmd

import (
	"strings"

	"github.com/Azure/aks-node-extension/internal/lifecycle"
)

// valueFlags are long flags that consume the following argument when
// given without "=".
var valueFlags = map[string]bool{
	"--handler-env":   true,
	"--extension-dir": true,
	"--log-level":     true,
}

// passthrough are cobra built-ins forwarded unchanged when no verb is present.
var passthrough = map[string]bool{
	"version":   true,
	"help":      true,
	"--version": true,
	"--help":    true,
	"-h":        true,
}

// matchVerb strips any leading '-' or '/' characters and reports whether
// the remainder starts with a lifecycle verb, so "-enable:foo" selects enable.
func matchVerb(arg string) (lifecycle.Verb, bool) {
	v, err := lifecycle.ParseVerb(strings.TrimLeft(arg, "-/"))
	if err != nil {
		return "", false
	}
	return v, true
}

// NormalizeArgs rewrites the agent's argument list into a cobra argument
// list. The first argument naming a verb selects the subcommand; later verbs
// and unrecognised arguments are dropped. Known long flags are kept. With
// no verb, only cobra built-ins such as "version" survive.
func NormalizeArgs(args []string) []string {
	var verb string
	var builtin string
	var flags []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		if v, ok := matchVerb(a); ok {
			if verb == "" {
				verb = string(v)
			}
			continue
		}

		name, _, hasValue := strings.Cut(a, "=")
		if valueFlags[name] {
			flags = append(flags, a)
			if !hasValue && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
			continue
		}

		if passthrough[a] && builtin == "" {
			builtin = a
		}
	}

	switch {
	case verb != "":
		return append([]string{verb}, flags...)
	case builtin != "":
		return append([]string{builtin}, flags...)
	default:
		return nil
	}
}
