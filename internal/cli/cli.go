// Package cli implements the autodoc command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Version is the autodoc version. It is a var so builds can override it with -ldflags "-X .../internal/cli.Version=1.2.3".
var Version = "0.1.0"

// RunOptions overrides the process environment. Nil fields use the real one; tests set them.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Getenv  func(string) string
	HomeDir string
	WorkDir string
}

// Run runs the CLI with args (typically os.Args).
//
// It returns a recommended exit code and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the arguments were sound (a failed run, a bad config, an unreachable backend).
//   - 2 -> err != nil, bad arguments or flags.
//
// Errors have already been printed to opts.Err (or Stderr) when Run returns.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	env := &environment{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, getenv: os.Getenv}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.errOut = opts.Err
		}
		if opts.Getenv != nil {
			env.getenv = opts.Getenv
		}
		env.homeDir = opts.HomeDir
		env.workDir = opts.WorkDir
	}

	root := newRootCommand(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.errOut)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0, nil
	}

	code := 1
	var ue *usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		code = 2
	}

	var re *reportedError
	if !errors.As(err, &re) {
		fmt.Fprintln(env.errOut, "Error: "+humanMessage(err))
		if code == 2 {
			fmt.Fprintln(env.errOut, "Run 'autodoc --help' for usage.")
		}
	}
	return code, err
}

// environment is what commands read and write instead of the os package.
type environment struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	getenv  func(string) string
	homeDir string
	workDir string
}

// usageError marks bad arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// reportedError is an error the user has already been shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }
