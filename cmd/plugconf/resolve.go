package plugconf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/varalys/plugconf/internal/report"
	"github.com/varalys/plugconf/internal/watch"
	"github.com/varalys/plugconf/pkg/core"
)

var (
	flagWatch  bool
	flagDigest bool
	flagPath   string
	flagQuery  string
	flagDiff   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the merged configuration tree",
		Long:  "Load every plugin module, merge plugin configs and app configs into one tree and print it.",
		Args:  cobra.NoArgs,
		RunE:  runResolve,
		Example: `
# Merge the plugins listed in ./plugconf.yml
plugconf resolve

# Ad hoc plugin list and app config, as YAML
plugconf resolve -m ./modules -p aurelia-api -p root:aurelia-auth --app-config app.yaml --format yaml

# Only what aurelia-api is handed, re-printed whenever a module changes
plugconf resolve --path aurelia-api --watch

# jq over the merged tree, showing only changed lines on each rerun
plugconf resolve -q '.["aurelia-api"].endpoint' --watch --diff
`,
	}
	cmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "re-resolve whenever a module, app config or plugconf config file changes")
	cmd.Flags().BoolVar(&flagDigest, "digest", false, "print a hash of the result instead of the result")
	cmd.Flags().StringVar(&flagPath, "path", "", "print only the node at this dotted path")
	cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "jq expression applied to the result before printing")
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "with --watch, print only the lines that changed since the last run")
	rootCmd.AddCommand(cmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	if flagDiff && flagDigest {
		return errors.New("--diff and --digest cannot be combined")
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger(cmd, s)

	if !flagWatch {
		_, err := printResolved(cmd.Context(), cmd.OutOrStdout(), s, log, nil)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &rerunner{out: cmd.OutOrStdout(), log: log, load: loadSettings, settings: s}
	r.run(ctx)
	for {
		w, err := watch.New(r.settings.Modules, r.settings.watchFiles(), watch.WithLogger(log))
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		log.WithField("roots", r.settings.Modules).Info("watching for changes")

		// A rerun that moves the watched paths restarts the watcher.
		runCtx, restart := context.WithCancel(ctx)
		err = w.Run(runCtx, func() {
			if r.run(ctx) {
				restart()
			}
		})
		restart()
		w.Close()
		if err != nil || ctx.Err() != nil {
			return err
		}
	}
}

// rerunner resolves again on every change. Settings are reloaded each time,
// so edits to plugconf config files take effect too.
type rerunner struct {
	out      io.Writer
	log      logrus.FieldLogger
	load     func() (settings, error)
	settings settings
	last     *result
}

// run reloads settings, then resolves and prints. Results equal to the last
// printed one print nothing. It reports whether the paths to watch changed.
func (r *rerunner) run(ctx context.Context) bool {
	moved := false
	if s, err := r.load(); err != nil {
		r.log.WithError(err).Error("reload settings failed, keeping the previous ones")
	} else {
		moved = !slices.Equal(s.Modules, r.settings.Modules) ||
			!slices.Equal(s.watchFiles(), r.settings.watchFiles())
		r.settings = s
	}

	res, err := printResolved(ctx, r.out, r.settings, r.log, r.last)
	if err != nil {
		r.log.WithError(err).Error("resolve failed")
		return moved
	}
	if r.last != nil && res.sum == r.last.sum {
		r.log.Debug("result unchanged")
	}
	r.last = res
	return moved
}

// result is one printed resolution.
type result struct {
	sum  string
	text string
}

// printResolved resolves s and writes the result to w unless its digest
// equals prev's. With --diff and a previous result only the changed lines
// are written.
func printResolved(ctx context.Context, w io.Writer, s settings, log logrus.FieldLogger, prev *result) (*result, error) {
	sess, err := resolve(ctx, s, log)
	if err != nil {
		return nil, err
	}

	var out any = sess.merged
	if flagPath != "" {
		if out, err = sess.framework.Container().Get(core.Of(flagPath)); err != nil {
			return nil, err
		}
		if out == nil {
			return nil, fmt.Errorf("nothing at %q", flagPath)
		}
	}
	if flagQuery != "" {
		vals, err := report.Query(out, flagQuery)
		if err != nil {
			return nil, err
		}
		if len(vals) == 1 {
			out = vals[0]
		} else {
			out = vals
		}
	}

	res := &result{}
	if res.sum, err = report.Digest(out); err != nil {
		return nil, err
	}
	b, err := report.Marshal(out, s.Format)
	if err != nil {
		return nil, err
	}
	res.text = string(b)
	if prev != nil && res.sum == prev.sum {
		return res, nil
	}

	switch {
	case flagDigest:
		_, err = fmt.Fprintln(w, res.sum)
	case flagDiff && prev != nil:
		_, err = fmt.Fprint(w, report.Diff(prev.text, res.text))
	default:
		err = report.PrintTree(w, out, report.PrintOptions{Format: s.Format, NoColor: s.NoColor})
	}
	return res, err
}
