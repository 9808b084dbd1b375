// Command lava is the loader's demo driver (spec.md §6, "documented for
// interop only" — not part of the core). It loads a class from the
// working directory's class path, prints it, and invokes one of its
// methods with three placeholder arguments.
//
// Grounded on nova's cmd/nova/main.go: a small flag-parsed entry point
// that dispatches to a handful of modes and prints diagnostics to
// stderr on failure, adapted from a language runtime's tokens/ast/run
// modes to this loader's load/dump/invoke sequence.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tangzhangming/lava/internal/class"
	"github.com/tangzhangming/lava/internal/invoke"
	"github.com/tangzhangming/lava/internal/manifest"
	"github.com/tangzhangming/lava/internal/registry"
)

var (
	className    = flag.String("class", "Test", "class to load")
	methodName   = flag.String("method", "", "method to invoke (defaults to \"P\" if present, else the first method)")
	manifestPath = flag.String("manifest", manifest.ConfigFileName, "project manifest path")
)

func main() {
	flag.Parse()

	classPaths := []string{"."}
	if cfg, err := manifest.Load(*manifestPath); err == nil {
		classPaths = cfg.ClassPaths
	}

	reg := registry.New()
	defer reg.Close()
	for _, p := range classPaths {
		reg.AddClassPath(p)
	}

	c := reg.MustLoadClass(*className)
	c.Dump(os.Stdout)

	m := pickMethod(c, *methodName)
	if m == nil {
		fmt.Fprintf(os.Stderr, "lava: class %q has no invocable method\n", c.Name)
		os.Exit(1)
	}
	if m.CodePtr == 0 {
		fmt.Fprintf(os.Stderr, "lava: method %s.%s has no materialized code\n", c.Name, m.Name)
		os.Exit(1)
	}
	fmt.Printf("invoking %s.%s (%s)\n", c.Name, m.Name, m.Descriptor)

	result := invoke.Call3(m.CodePtr, 1, 2, 3)
	fmt.Printf("result = %#x\n", result)
}

// pickMethod implements the CLI surface documented in spec.md §6: invoke
// the method explicitly named on the command line, else the method named
// "P" if one exists, else the first method.
func pickMethod(c *class.Class, explicit string) *class.Method {
	if explicit != "" {
		if m, ok := c.GetMethod(explicit, ""); ok {
			return m
		}
		return nil
	}
	if m, ok := c.GetMethod("P", ""); ok {
		return m
	}
	if len(c.Methods) > 0 {
		return &c.Methods[0]
	}
	return nil
}
