// The pmxfile-dump command prints a readable representation of a PMX file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pmxutil/pmxfile/internal/logger"
	"github.com/pmxutil/pmxfile/pmx"
)

const usage = `usage: pmxfile-dump [-debug] [INPUT] [OUTPUT]

Reads a PMX file from INPUT, and dumps a readable representation of the header
and every section to OUTPUT.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.
`

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) (err error) {
	var input io.Reader = stdin
	var output io.Writer = stdout

	flags := flag.NewFlagSet("pmxfile-dump", flag.ContinueOnError)
	debug := flags.Bool("debug", false, "log each decoded section to stderr")
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *debug {
		logger.Init("debug", "")
		defer logger.Sync()
	}
	files := flags.Args()
	if len(files) >= 1 && files[0] != "-" {
		in, err := os.Open(files[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		input = in
		defer in.Close()
	}
	if len(files) >= 2 && files[1] != "-" {
		out, err := os.Create(files[1])
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		defer func() {
			if serr := out.Sync(); serr != nil && err == nil {
				err = fmt.Errorf("sync output: %w", serr)
			}
		}()
		output = out
	}

	warn, err := pmx.Decoder{Logger: logger.Log}.Dump(output, input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}
	return nil
}
