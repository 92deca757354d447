package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
)

var (
	watchFilter string
	watchQuery  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the library loaded and report changes",
	Long: `Load the library into a session and keep it fresh until interrupted.

Unenriched items are enriched in the background. Links saved by other
processes show up as soon as the database changes, and the library is
reloaded every refresh.interval when that is set.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFilter, "filter", "f", "all", "category filter: "+filterNames())
	watchCmd.Flags().StringVarP(&watchQuery, "query", "q", "", "free-text query")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if current == nil || current.NewSession == nil {
		return errors.New("session not configured")
	}

	filter, err := domain.ParseFilter(watchFilter)
	if err != nil {
		return fmt.Errorf("unknown filter %q (want one of %s): %w", watchFilter, filterNames(), err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session := current.NewSession()
	defer session.Close()

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	session.Appear()
	if filter != domain.FilterAll {
		session.SelectFilter(filter)
	}
	if watchQuery != "" {
		session.ChangeQuery(watchQuery)
	}

	var tasks []driving.Scheduler
	if current.Background != nil {
		tasks = current.Background(session)
	}
	errCh := make(chan error, len(tasks))
	for _, task := range tasks {
		go func(task driving.Scheduler) {
			errCh <- task.Start(ctx)
		}(task)
	}
	defer func() {
		for _, task := range tasks {
			_ = task.Stop()
		}
	}()

	var last string
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("background task failed: %w", err)
			}
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			line := describeSnapshot(snap)
			if line != last {
				cmd.Printf("[%s] %s\n", time.Now().Format("15:04:05"), line)
				last = line
			}
		}
	}
}

// describeSnapshot renders the parts of a snapshot worth reporting.
func describeSnapshot(snap driving.SessionSnapshot) string {
	switch snap.Status {
	case driving.SessionLoadFailed:
		return fmt.Sprintf("load failed: %v", snap.LoadErr)
	case driving.SessionReady:
	default:
		return string(snap.Status)
	}

	line := fmt.Sprintf("ready: %d of %d item(s) visible", len(snap.Visible), snap.Loaded)
	if snap.Enriching {
		line += ", enriching"
	}
	if snap.Searching {
		line += ", searching"
	}
	if snap.LastDelete != nil && !snap.LastDelete.OK() {
		line += fmt.Sprintf(", last delete: %v", snap.LastDelete.Err())
	}
	return line
}
