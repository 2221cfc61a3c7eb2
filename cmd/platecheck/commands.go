package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/platechanges/internal/adapters/modelfile"
	"github.com/okian/platechanges/internal/adapters/repository"
	app "github.com/okian/platechanges/internal/app"
	"github.com/okian/platechanges/internal/domain/levels"
	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/pkg/logger"
)

// errViolations is returned when a batch would invert the level order and
// was not forced.
var errViolations = errors.New("level order would be inverted")

type options struct {
	modelPath string
	excluded  []string
	logLevel  string
	sets      []string
	force     bool
	output    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "platecheck",
		Short:         "Check and apply plate height changes to a building model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithLevel(opts.logLevel))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.modelPath, "model", "m", "", "building model YAML file")
	pf.StringSliceVar(&opts.excluded, "exclude", levels.DefaultExcludedNames, "level names that are never adjusted")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	_ = root.MarkPersistentFlagRequired("model")

	root.AddCommand(newLevelsCmd(opts), newCheckCmd(opts), newApplyCmd(opts))
	return root
}

func addSetFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, `adjustment as "<level id or name>=<feet>", repeatable`)
}

func newLevelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the adjustable levels, bottom to top",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			lvls, err := s.svc.AdjustableLevels(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tELEVATION")
			for _, l := range lvls {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", l.ID, l.Name, l.Display)
			}
			return tw.Flush()
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report levels that would pass each other, without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			out, err := s.svc.Check(cmd.Context(), s.change)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !out.OK {
				_, _ = fmt.Fprintln(w, out.Report)
				return errViolations
			}
			_, _ = fmt.Fprintf(w, "Level order holds for %d adjusted level(s).\n", out.Requested)
			return nil
		},
	}
	addSetFlag(cmd, opts)
	return cmd
}

func newApplyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply adjustments and print the adjusted model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			s.change.Force = opts.force
			out, err := s.svc.Apply(cmd.Context(), s.change)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !out.Applied {
				_, _ = fmt.Fprintln(w, out.Report)
				_, _ = fmt.Fprintln(w, "Nothing was written. Re-run with --force to apply anyway.")
				return errViolations
			}
			if out.Report != "" {
				_, _ = fmt.Fprintln(w, out.Report)
			}
			_, _ = fmt.Fprintln(w, out.Summary)

			lvls, err := s.store.Levels(cmd.Context())
			if err != nil {
				return err
			}
			return writeModel(w, opts.output, lvls)
		},
	}
	addSetFlag(cmd, opts)
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "apply even when the level order would be inverted")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the adjusted model to this file instead of stdout")
	return cmd
}

// session is a started service over the model file named by --model.
type session struct {
	svc    *app.Service
	store  *repository.MemStore
	change model.PlateChange
}

func openSession(ctx context.Context, opts *options) (*session, error) {
	lvls, err := modelfile.Load(opts.modelPath)
	if err != nil {
		return nil, err
	}
	deltas, err := parseSets(lvls, opts.sets)
	if err != nil {
		return nil, err
	}

	store, err := repository.NewMemStore(ctx, repository.WithLevels(lvls...))
	if err != nil {
		return nil, err
	}
	svc := app.New(
		app.WithStore(store),
		app.WithExcludedLevelNames(opts.excluded...),
		app.WithLogger(logger.Named("platecheck")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{svc: svc, store: store, change: model.PlateChange{Deltas: deltas}}, nil
}

func (s *session) close() {
	s.svc.Stop()
	_ = s.store.Close()
}

// parseSets resolves each "<level>=<feet>" flag to a level id. A level is
// matched by id first, then by its unique name.
func parseSets(lvls []model.Level, sets []string) (map[string]string, error) {
	byID := make(map[string]struct{}, len(lvls))
	byName := make(map[string][]string, len(lvls))
	for _, l := range lvls {
		byID[l.ID] = struct{}{}
		byName[l.Name] = append(byName[l.Name], l.ID)
	}

	deltas := make(map[string]string, len(sets))
	for _, s := range sets {
		i := strings.LastIndex(s, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid --set %q: want <level>=<feet>", s)
		}
		key, value := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])

		id := key
		if _, ok := byID[key]; !ok {
			ids := byName[key]
			switch len(ids) {
			case 0:
				return nil, fmt.Errorf("%w: %q", repository.ErrNotFound, key)
			case 1:
				id = ids[0]
			default:
				return nil, fmt.Errorf("level name %q is ambiguous; use one of the ids %v", key, ids)
			}
		}
		deltas[id] = value
	}
	return deltas, nil
}

func writeModel(stdout io.Writer, path string, lvls []model.Level) error {
	if path == "" {
		return modelfile.Encode(stdout, lvls)
	}
	f, err := os.Create(path) //nolint:gosec // path is the operator's --output flag
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := modelfile.Encode(f, lvls); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
