// Command lavac is the .lclass compiler utility (spec.md §6, "documented
// for interop only" — not part of the core). It interactively prompts
// for a class's name, supers, fields, and methods, then writes the
// resulting .lclass file to an output path (default "Test.lclass").
//
// Grounded on two sources: the prompt sequence (class name, then
// repeated super/field/method prompts terminated by a blank line) is
// adapted from original_source/LavaCompiler/Main.cpp; the flag-parsed
// command shape with a Usage func and stderr diagnostics is adapted from
// nova's cmd/sola/cmd_init.go.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tangzhangming/lava/internal/lclassw"
)

func main() {
	flag.Usage = func() {
		fmt.Println("Usage: lavac [output.lclass]")
		fmt.Println()
		fmt.Println("Interactively builds a .lclass file from prompts.")
	}
	flag.Parse()

	out := "Test.lclass"
	if flag.NArg() >= 1 {
		out = flag.Arg(0)
	}

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), 1024*1024)

	className := prompt(in, "Class name: ")
	if className == "" {
		fmt.Fprintln(os.Stderr, "lavac: class name is required")
		os.Exit(1)
	}
	w := lclassw.NewClassWriter(className)

	for {
		super := prompt(in, "Super class name (blank to stop): ")
		if super == "" {
			break
		}
		w.SuperNames = append(w.SuperNames, super)
	}

	for {
		name := prompt(in, "Field name (blank to stop): ")
		if name == "" {
			break
		}
		descriptor := prompt(in, "Field descriptor: ")
		w.Fields = append(w.Fields, lclassw.FieldSpec{
			AccessFlags: 0x0001,
			Name:        name,
			Descriptor:  descriptor,
		})
	}

	for {
		name := prompt(in, "Method name (blank to stop): ")
		if name == "" {
			break
		}
		descriptor := prompt(in, "Method descriptor: ")
		code := readCodeBytes(in)

		var refs []lclassw.MethodRefSpec
		for {
			refClass := prompt(in, "Method ref class name (blank to stop): ")
			if refClass == "" {
				break
			}
			refDescriptor := prompt(in, "Method ref method descriptor: ")
			offset := promptUint(in, "Method ref code offset: ")
			refs = append(refs, lclassw.MethodRefSpec{
				ClassName:  refClass,
				Descriptor: refDescriptor,
				ByteOffset: uint32(offset),
			})
		}

		w.Methods = append(w.Methods, lclassw.MethodSpec{
			AccessFlags: 0x0001,
			Name:        name,
			Descriptor:  descriptor,
			Code:        code,
			Refs:        refs,
		})
	}

	data, err := w.ToBytes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lavac: encode: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "lavac: write %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", out, len(data))
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func promptUint(in *bufio.Scanner, label string) uint64 {
	s := prompt(in, label)
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		fmt.Printf("lavac: %q is not a valid offset, using 0\n", s)
		return 0
	}
	return v
}

// readCodeBytes reads whitespace-separated hex byte pairs until a blank
// line, warning (not failing) on malformed input — matching the
// tolerant-skip behavior of the original compiler's hex parser.
func readCodeBytes(in *bufio.Scanner) []byte {
	fmt.Println("Method code (space-separated hex bytes, blank line to stop):")
	var code []byte
	for {
		fmt.Print("  ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			break
		}
		for _, tok := range strings.Fields(line) {
			if len(tok)%2 != 0 {
				fmt.Printf("lavac: %q has an odd number of nibbles, skipping\n", tok)
				continue
			}
			b, err := parseHexBytes(tok)
			if err != nil {
				fmt.Printf("lavac: %q is not valid hex, skipping: %v\n", tok, err)
				continue
			}
			code = append(code, b...)
		}
	}
	return code
}

func parseHexBytes(s string) ([]byte, error) {
	b := make([]byte, len(s)/2)
	for i := range b {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		b[i] = byte(v)
	}
	return b, nil
}
