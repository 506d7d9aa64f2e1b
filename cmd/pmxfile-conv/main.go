// The pmxfile-conv command rewrites a PMX file. The written file uses the
// smallest index widths for its content, and the lowest version that supports
// the features in use.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pmxutil/pmxfile/internal/config"
	"github.com/pmxutil/pmxfile/internal/logger"
	"github.com/pmxutil/pmxfile/pmx"
	"go.uber.org/zap"
)

const usage = `usage: pmxfile-conv [-config FILE] [-debug] [-utf8 | -utf16] [INPUT] [OUTPUT]

Reads a PMX file from INPUT, and writes to OUTPUT the same model, re-encoded.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

Options:
  -config FILE  read settings from a YAML file
  -debug        log each section to stderr
  -utf8         encode text as UTF-8
  -utf16        encode text as UTF-16LE (default)
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

// run converts between the files named by args. stdin and stdout are used when
// a file is unspecified or "-".
func run(args []string, stdin io.Reader, stdout io.Writer) (err error) {
	var input io.Reader = stdin
	var output io.Writer = stdout

	flags := flag.NewFlagSet("pmxfile-conv", flag.ContinueOnError)
	configPath := flags.String("config", "", "")
	debug := flags.Bool("debug", false, "")
	utf8 := flags.Bool("utf8", false, "")
	utf16 := flags.Bool("utf16", false, "")
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	switch {
	case *utf8 && *utf16:
		return errors.New("-utf8 and -utf16 are mutually exclusive")
	case *utf8:
		cfg.Output.Encoding = "utf8"
	case *utf16:
		cfg.Output.Encoding = "utf16"
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

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

	model, header, warn, err := pmx.Decoder{Logger: logger.Log}.Decode(input)
	if warn != nil {
		logger.Log.Warn("decode warning", zap.Error(warn))
	}
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	logger.Log.Info("decoded",
		zap.Stringer("version", header.Version),
		zap.Stringer("encoding", header.Encoding),
		zap.Int("vertices", len(model.Vertices)),
		zap.Int("bones", len(model.Bones)),
	)

	enc := pmx.Encoder{UTF16: cfg.UTF16(), Logger: logger.Log}
	if err := enc.Encode(output, model); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
