package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/errors"
	"git.home.luguber.info/inful/housing-dpe/internal/runstore"
)

// HistoryCmd implements the 'history' command: list previous runs, or the
// stage events of one run.
type HistoryCmd struct {
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs to list"`
	Events string `help:"Show stage events for the given run ID instead"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	if cfg.State.Disabled {
		return errors.New(errors.CategoryStorage, errors.SeverityError, "run history is disabled in the configuration")
	}
	// Before the first run there is no database yet; that is not an error.
	if _, err := os.Stat(storePath(cfg)); os.IsNotExist(err) {
		if h.Events != "" {
			fmt.Printf("No events recorded for run %s.\n", h.Events)
		} else {
			fmt.Println("No runs recorded yet.")
		}
		return nil
	}
	store, err := runstore.Open(storePath(cfg))
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "open run history")
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.Events != "" {
		return printEvents(ctx, store, h.Events)
	}
	return printRuns(ctx, store, h.Limit)
}

func printRuns(ctx context.Context, store *runstore.Store, limit int) error {
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "list runs")
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tOUTCOME\tOBS\tCONFIG")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.NObs,
			r.ConfigPath,
		)
	}
	return w.Flush()
}

func printEvents(ctx context.Context, store *runstore.Store, runID string) error {
	events, err := store.EventsForRun(ctx, runID)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "list stage events")
	}
	if len(events) == 0 {
		fmt.Printf("No events recorded for run %s.\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTAGE\tEVENT\tDETAIL")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("15:04:05"),
			e.Stage,
			e.EventType,
			e.Detail,
		)
	}
	return w.Flush()
}
