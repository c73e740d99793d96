package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/codalotl/autodoc/internal/buffer"
	"github.com/codalotl/autodoc/internal/collect"
	"github.com/codalotl/autodoc/internal/config"
	"github.com/codalotl/autodoc/internal/docubot"
	"github.com/codalotl/autodoc/internal/gocode"
	"github.com/codalotl/autodoc/internal/javacode"
	"github.com/codalotl/autodoc/internal/llmcomplete"
	"github.com/codalotl/autodoc/internal/metrics"
	"github.com/codalotl/autodoc/internal/progressui"
	"github.com/codalotl/autodoc/internal/q/health"
	"github.com/codalotl/autodoc/internal/simplelogger"
	"github.com/codalotl/autodoc/internal/syntax"
	"github.com/codalotl/autodoc/internal/task"
	"github.com/codalotl/autodoc/internal/updatedocs"
)

// newGenerator builds the generator for a documentation run. Tests swap it for a mock.
var newGenerator = func(cfg llmcomplete.Config) docubot.Generator {
	return llmcomplete.New(cfg)
}

// session holds what one command invocation shares: configuration, logger, metrics, and the file buffers.
type session struct {
	env   *environment
	flags *rootFlags

	cfg       config.Config
	log       health.Ctx
	closeLog  func() error
	metrics   *metrics.Metrics
	registry  *syntax.Registry
	store     *buffer.Store
	collector *collect.Collector
}

func loadConfig(cmd *cobra.Command, env *environment, flags *rootFlags) (config.Config, error) {
	return config.Load(config.LoadOptions{
		HomeDir:   env.homeDir,
		WorkDir:   env.workDir,
		File:      flags.configFile,
		Getenv:    env.getenv,
		Overrides: overrides(cmd),
	})
}

func newSession(cmd *cobra.Command, env *environment, flags *rootFlags) (*session, error) {
	cfg, err := loadConfig(cmd, env, flags)
	if err != nil {
		return nil, err
	}

	logger, closeLog := simplelogger.New(simplelogger.Options{Verbose: flags.verbose, Stderr: env.errOut})
	log := health.NewCtx(logger).With("cmd", cmd.Name())

	registry := syntax.NewRegistry(gocode.Language(), javacode.Language())
	store := buffer.NewStore(flags.dryRun)
	return &session{
		env:       env,
		flags:     flags,
		cfg:       cfg,
		log:       log,
		closeLog:  closeLog,
		metrics:   metrics.New(),
		registry:  registry,
		store:     store,
		collector: collect.New(registry, store, cfg.Collect(log)),
	}, nil
}

func (s *session) close() {
	if s.flags.metricsFile != "" {
		if err := s.metrics.WriteFile(s.flags.metricsFile); err != nil {
			fmt.Fprintf(s.env.errOut, "warning: write metrics: %v\n", err)
		}
	}
	_ = s.closeLog()
}

func (s *session) collectFiles(paths []string) ([]*task.Task, error) {
	var tasks []*task.Task
	for _, p := range paths {
		ts, err := s.collector.CollectFromFile(p)
		if err != nil {
			return nil, s.log.LogWrappedErr("collect file", err, "path", p)
		}
		tasks = append(tasks, ts...)
	}
	return tasks, nil
}

// document runs tasks and, on a dry run, prints the resulting diffs. The run's notifications are the user-facing report, so a failed run
// returns a reportedError.
func (s *session) document(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(s.env.errOut, "Nothing to document.")
		return nil
	}

	sink := s.newSink()
	stopSignals := cancelOnInterrupt(sink)

	orch := docubot.New(docubot.Options{
		Ctx:             s.log,
		Generator:       newGenerator(s.cfg.LLM(s.log, s.metrics)),
		Mutator:         updatedocs.New(s.log, s.registry, s.store),
		Skipper:         s.collector,
		Notifier:        sink,
		Progress:        sink,
		Metrics:         s.metrics,
		CommentLanguage: s.cfg.CommentLanguage,
	})
	s.log.Log("starting documentation run", "run_id", orch.RunID(), "tasks", len(tasks), "provider", s.cfg.Provider, "dry_run", s.flags.dryRun)
	stats, runErr := orch.Run(ctx, tasks)

	stopSignals()
	if err := sink.Close(); err != nil {
		s.log.Warn("progress display failed", "err", err)
	}

	if s.flags.dryRun {
		s.printDiffs()
	}

	if runErr != nil {
		return &reportedError{err: runErr}
	}
	if stats.Failed > 0 {
		return &reportedError{err: fmt.Errorf("%d of %d elements failed", stats.Failed, len(tasks))}
	}
	return nil
}

func (s *session) printDiffs() {
	color := false
	if f, ok := s.env.out.(*os.File); ok {
		color = progressui.IsTerminal(f)
	}
	for _, path := range s.store.Changed() {
		fmt.Fprint(s.env.out, s.store.Diff(path).Unified(path, path, 3, color))
	}
}

func (s *session) newSink() progressui.Sink {
	in, inFile := s.env.in.(*os.File)
	errOut, outFile := s.env.errOut.(*os.File)
	interactive := inFile && outFile && progressui.IsTerminal(in) && progressui.IsTerminal(errOut)

	if interactive && !s.flags.noProgress {
		return progressui.NewBar(in, errOut)
	}
	width := 0
	if interactive {
		width = progressui.Width(errOut)
	}
	return progressui.NewLines(s.env.errOut, width)
}

// cancelOnInterrupt turns the first SIGINT into a cooperative cancel. The returned func stops listening.
func cancelOnInterrupt(sink progressui.Sink) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			sink.Cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func humanMessage(err error) string {
	return health.HumanMessage(err)
}
