package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/codalotl/autodoc/internal/llmcomplete"
	"github.com/codalotl/autodoc/internal/q/health"
)

type rootFlags struct {
	configFile   string
	provider     string
	model        string
	dryRun       bool
	skipExisting bool
	noProgress   bool
	verbose      bool
	metricsFile  string
}

// flagKeys maps flags that override configuration to their YAML keys.
var flagKeys = map[string]string{
	"provider":      "provider",
	"model":         "model",
	"skip-existing": "skip_existing",
}

func newRootCommand(env *environment) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "autodoc",
		Short: "Write doc comments for Go and Java code with a language model",
		Long: `autodoc asks an OpenAI-compatible chat backend for a doc comment for each type, function, test, and field in scope, and
writes the comments into the source files.

Configuration is read from ~/.autodoc/config.yaml, the nearest .autodoc/config.yaml, --config, AUTODOC_* environment
variables, and flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file, applied over the discovered ones")
	pf.StringVar(&flags.provider, "provider", "", "provider ID (see 'autodoc providers')")
	pf.StringVar(&flags.model, "model", "", "model ID; defaults to the provider's default model")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "print the diffs instead of writing files")
	pf.BoolVar(&flags.skipExisting, "skip-existing", false, "leave elements that already have a doc comment alone")
	pf.BoolVar(&flags.noProgress, "no-progress", false, "print plain progress lines instead of a progress bar")
	pf.BoolVar(&flags.verbose, "verbose", false, "log debug output to stderr")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file at exit")

	root.AddCommand(
		newAtCommand(env, flags),
		newFileCommand(env, flags),
		newDirCommand(env, flags),
		newCheckCommand(env, flags),
		newProvidersCommand(env),
		newConfigCommand(env, flags),
		newVersionCommand(env),
	)
	return root
}

// args wraps a cobra argument validator so its errors are usage errors.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// overrides returns the configuration keys set by flags the user actually passed.
func overrides(cmd *cobra.Command) map[string]string {
	m := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			m[key] = f.Value.String()
		}
	})
	return m
}

func newAtCommand(env *environment, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "at <file> <line:col|offset>",
		Short: "Document the element at a position, expanding a type to its members",
		Long: `Document the element at a position. The position is a 1-based line and byte column (12:5) or a 0-based byte offset.
A position inside a function or on a field documents just that member. A position on a type's name, header, or doc comment
documents the type alone; elsewhere in the type's body it documents the type and all its members. A position outside any
element documents the whole file.`,
		Args: args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			s, err := newSession(cmd, env, flags)
			if err != nil {
				return err
			}
			defer s.close()

			src, err := s.store.Read(a[0])
			if err != nil {
				return err
			}
			offset, err := parsePosition(src, a[1])
			if err != nil {
				return &usageError{err: err}
			}
			tasks, err := s.collector.CollectFromElement(a[0], offset)
			if err != nil {
				return err
			}
			return s.document(cmd.Context(), tasks)
		},
	}
}

func newFileCommand(env *environment, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "file <file>...",
		Short: "Document every element of the given files",
		Args:  args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			s, err := newSession(cmd, env, flags)
			if err != nil {
				return err
			}
			defer s.close()

			tasks, err := s.collectFiles(a)
			if err != nil {
				return err
			}
			return s.document(cmd.Context(), tasks)
		},
	}
}

func newDirCommand(env *environment, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dir <dir>",
		Short: "Document every supported file under a directory",
		Long:  "Document every supported file under a directory. Hidden directories, vendor, testdata, node_modules, and generated files are skipped.",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			s, err := newSession(cmd, env, flags)
			if err != nil {
				return err
			}
			defer s.close()

			tasks, err := s.collector.CollectFromDirectory(cmd.Context(), a[0])
			if err != nil {
				return err
			}
			return s.document(cmd.Context(), tasks)
		},
	}
}

func newCheckCommand(env *environment, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Send one small request to verify the provider, model, and key",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env, flags)
			if err != nil {
				return err
			}
			defer s.close()

			client := llmcomplete.New(s.cfg.LLM(s.log, s.metrics))
			res := client.ValidateConfig(cmd.Context())
			if !res.Success {
				msg := res.Message
				if res.Details != "" {
					msg += "\n" + res.Details
				}
				return health.NewHumanErr(msg, "config check failed", "provider", client.ProviderID(), "model", client.Model())
			}
			fmt.Fprintln(env.out, res.Message)
			return nil
		},
	}
}

func newProvidersCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the built-in providers",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(env.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDEFAULT MODEL\tBASE URL\tKEY")
			for _, p := range llmcomplete.Providers() {
				key := "-"
				if p.KeyEnv != "" {
					key = "$" + p.KeyEnv
					if !p.KeyRequired {
						key += " (optional)"
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, dash(p.DefaultModel), dash(p.BaseURL), key)
			}
			return w.Flush()
		},
	}
}

func newConfigCommand(env *environment, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and where each value came from",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, env, flags)
			if err != nil {
				return err
			}
			return cfg.WriteYAML(env.out, true)
		},
	}
}

func newVersionCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  args(cobra.NoArgs),
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(env.out, "autodoc "+Version)
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parsePosition converts "line:col" (1-based, col in bytes) or a bare byte offset into an offset into src.
func parsePosition(src []byte, pos string) (int, error) {
	lineStr, colStr, isLineCol := strings.Cut(pos, ":")
	if !isLineCol {
		off, err := strconv.Atoi(pos)
		if err != nil || off < 0 {
			return 0, fmt.Errorf("invalid position %q: want line:col or a byte offset", pos)
		}
		if off > len(src) {
			return 0, fmt.Errorf("offset %d is past the end of the file (%d bytes)", off, len(src))
		}
		return off, nil
	}

	line, err1 := strconv.Atoi(lineStr)
	col, err2 := strconv.Atoi(colStr)
	if err1 != nil || err2 != nil || line < 1 || col < 1 {
		return 0, fmt.Errorf("invalid position %q: want line:col with both >= 1", pos)
	}

	off := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(src[off:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d is past the end of the file", line)
		}
		off += i + 1
	}
	end := len(src)
	if i := bytes.IndexByte(src[off:], '\n'); i >= 0 {
		end = off + i
	}
	if off+col-1 > end {
		return 0, fmt.Errorf("column %d is past the end of line %d", col, line)
	}
	return off + col - 1, nil
}
