package taskboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	server "github.com/louisbranch/taskboard/internal/services/project/app"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
	"github.com/louisbranch/taskboard/internal/services/project/domain/replay"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/storage/postgres"
	"github.com/louisbranch/taskboard/internal/services/project/storage/sqlite"
)

const verifyPageSize = 500

// ErrVerifyFailed reports that at least one stream failed verification.
var ErrVerifyFailed = errors.New("event chain verification failed")

func newMigrateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending storage migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, err := migrate(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "no pending migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			return nil
		},
	}
}

func migrate(ctx context.Context, cfg Config) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage)) {
	case server.DriverSQLite, "":
		return sqlite.Migrate(ctx, cfg.SQLitePath)
	case server.DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, errors.New("database url is required")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open pool: %w", err)
		}
		defer pool.Close()
		return postgres.Migrate(ctx, pool)
	case server.DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}

func newReplayCmd(cfg *Config) *cobra.Command {
	var untilSeq uint64
	cmd := &cobra.Command{
		Use:   "replay <project-id>",
		Short: "Rebuild a project from its events and print the resulting state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := server.OpenStore(cmd.Context(), cfg.storeConfig())
			if err != nil {
				return err
			}
			defer store.Close()
			return replayProject(cmd.Context(), store, args[0], untilSeq, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Uint64Var(&untilSeq, "until", 0, "Stop after this sequence (0 replays everything)")
	return cmd
}

func replayProject(ctx context.Context, journal storage.Journal, projectID string, untilSeq uint64, out io.Writer) error {
	result, err := replay.Replay(ctx, journal, project.Fold, projectID, project.State{}, replay.Options{UntilSeq: untilSeq})
	if err != nil {
		return fmt.Errorf("replay %s: %w", projectID, err)
	}
	if !result.State.Created {
		return fmt.Errorf("project %s has no events", projectID)
	}
	state := result.State
	fmt.Fprintf(out, "project %s at seq %d (%d events)\n", state.ProjectID, result.LastSeq, result.Applied)
	fmt.Fprintf(out, "title: %s\n", state.Title)
	fmt.Fprintf(out, "creator: %s\n", state.CreatorID)
	fmt.Fprintf(out, "members: %s\n", strings.Join(state.MemberIDs(), ", "))
	for _, task := range state.TaskList() {
		fmt.Fprintf(out, "task %s %q assignee=%s tags=[%s]\n", task.TaskID, task.Name, task.AssigneeID, strings.Join(task.TagIDList(), ", "))
	}
	for _, tag := range state.TagList() {
		fmt.Fprintf(out, "tag %s %q color=%s\n", tag.TagID, tag.Name, tag.Color)
	}
	return nil
}

func newVerifyCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [project-id...]",
		Short: "Recompute event hashes and check every chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := server.OpenStore(cmd.Context(), cfg.storeConfig())
			if err != nil {
				return err
			}
			defer store.Close()
			return verifyProjects(cmd.Context(), store, args, cmd.OutOrStdout())
		},
	}
}

// verifyProjects checks the listed projects, or every project when ids is empty.
func verifyProjects(ctx context.Context, journal storage.Journal, ids []string, out io.Writer) error {
	if len(ids) == 0 {
		lister, ok := journal.(storage.ProjectLister)
		if !ok {
			return errors.New("storage cannot list projects; pass project ids")
		}
		listed, err := lister.ListProjectIDs(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		ids = listed
	}

	failed := 0
	for _, projectID := range ids {
		count, err := verifyProject(ctx, journal, projectID)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", projectID, err)
			continue
		}
		fmt.Fprintf(out, "ok %s (%d events)\n", projectID, count)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d projects", ErrVerifyFailed, failed, len(ids))
	}
	return nil
}

func verifyProject(ctx context.Context, journal storage.Journal, projectID string) (int, error) {
	var events []event.Event
	var after uint64
	for {
		page, err := journal.ListEvents(ctx, projectID, after, verifyPageSize)
		if err != nil {
			return 0, fmt.Errorf("list events: %w", err)
		}
		events = append(events, page...)
		if len(page) < verifyPageSize {
			break
		}
		after = page[len(page)-1].Seq
	}
	if len(events) == 0 {
		return 0, errors.New("no events")
	}
	if err := event.VerifyChain(events); err != nil {
		return 0, err
	}
	return len(events), nil
}
