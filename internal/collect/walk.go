package collect

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/codalotl/autodoc/internal/detectlang"
	"github.com/codalotl/autodoc/internal/scope"
	"github.com/codalotl/autodoc/internal/task"
)

// SourceFiles returns the files under dir that a registered language can parse, in lexical order. Hidden directories, vendor, testdata, and
// node_modules are not entered.
func (c *Collector) SourceFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && detectlang.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && c.registry.Supports(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// CollectFromDirectory collects every supported file under dir. Files are parsed concurrently; the tasks come back grouped by file in lexical
// path order. Generated files are skipped, and a file that fails to parse is logged and skipped rather than failing the walk.
func (c *Collector) CollectFromDirectory(ctx context.Context, dir string) ([]*task.Task, error) {
	paths, err := c.SourceFiles(dir)
	if err != nil {
		return nil, c.opts.LogWrappedErr("collect: walk directory", err, "dir", dir)
	}

	perFile := make([][]*task.Task, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := c.store.Read(path)
			if err != nil {
				return err
			}
			if isGenerated(src) {
				c.opts.Debug("skipping generated file", "path", path)
				return nil
			}
			f, err := c.registry.Parse(path, src)
			if err != nil {
				c.opts.Warn("skipping unparsable file", "path", path, "err", err)
				return nil
			}
			perFile[i] = c.Collect(f, scope.WholeFile(f))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tasks []*task.Task
	for _, ts := range perFile {
		tasks = append(tasks, ts...)
	}
	return tasks, nil
}
