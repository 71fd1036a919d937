package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/xarkenz/icd-example/pkg/codegen"
	"github.com/xarkenz/icd-example/pkg/syntax"
	"github.com/xarkenz/icd-example/pkg/token"
)

var version = "0.1.0"

var (
	debug      bool
	outfile    string
	dumpTokens bool
	dumpAST    bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red(fmt.Sprintf("icd-example: %v", err)))
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "icd-example [options] infiles...",
		Short: "icd-example compiles a small C subset to textual LLVM-IR",
		Long: `icd-example is a single-pass compiler translating a small imperative
language (a strict subset of C) into textual LLVM-IR, suitable for
assembly and linking with the LLVM toolchain.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}

			// The dump modes inspect each input instead of compiling it
			if dumpTokens {
				return forEachInfile(args, func(infile string) error {
					return doDumpTokens(infile, out)
				})
			}
			if dumpAST {
				return forEachInfile(args, func(infile string) error {
					return doDumpAST(infile, out)
				})
			}

			// Each input file is compiled independently into the same
			// outfile, so the last writer wins
			return forEachInfile(args, func(infile string) error {
				return compileFile(infile, outfile, debug, out)
			})
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.Flags().StringVarP(&outfile, "outfile", "o", "out.ll", "destination path for emitted LLVM-IR")
	rootCmd.Flags().BoolVar(&dumpTokens, "dump-tokens", false, "print the token stream instead of compiling")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print each parsed top-level statement instead of compiling")

	return rootCmd
}

// forEachInfile applies an action to each input path in order, stopping at
// the first failure.
func forEachInfile(infiles []string, action func(infile string) error) error {
	for _, infile := range infiles {
		if err := action(infile); err != nil {
			return err
		}
	}
	return nil
}

// compileFile runs the scan/parse/generate pipeline over a single input
// file, writing the emitted LLVM-IR to the outfile.
func compileFile(infile, outfile string, debug bool, out io.Writer) error {
	source, err := os.Open(infile)
	if err != nil {
		return fmt.Errorf("unable to open file '%s': %w", infile, err)
	}
	defer source.Close()

	scanner := token.NewScanner(source)
	parser, err := syntax.NewParser(scanner)
	if err != nil {
		return err
	}

	sink, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("unable to create file '%s': %w", outfile, err)
	}
	defer sink.Close()

	if err := codegen.Generate(sink, parser, infile, debug); err != nil {
		return err
	}

	if debug {
		fmt.Fprintf(out, "successfully written to '%s'\n", aurora.Green(outfile))
	}
	return nil
}

// doDumpTokens scans an input file and prints its token stream, one token
// per line.
func doDumpTokens(infile string, out io.Writer) error {
	source, err := os.Open(infile)
	if err != nil {
		return fmt.Errorf("unable to open file '%s': %w", infile, err)
	}
	defer source.Close()

	scanner := token.NewScanner(source)
	for {
		scanned, err := scanner.ScanToken()
		if err != nil {
			return err
		}
		if scanned == nil {
			return nil
		}
		fmt.Fprintln(out, scanned)
	}
}

// doDumpAST parses an input file and pretty-prints each top-level statement.
func doDumpAST(infile string, out io.Writer) error {
	source, err := os.Open(infile)
	if err != nil {
		return fmt.Errorf("unable to open file '%s': %w", infile, err)
	}
	defer source.Close()

	scanner := token.NewScanner(source)
	parser, err := syntax.NewParser(scanner)
	if err != nil {
		return err
	}
	for {
		statement, err := parser.ParseTopLevelStatement()
		if err != nil {
			return err
		}
		if statement == nil {
			return nil
		}
		spew.Fdump(out, statement)
	}
}
