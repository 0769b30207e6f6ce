package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/command"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
	"github.com/louisbranch/taskboard/internal/services/project/domain/replay"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
)

// DefaultMaxAttempts bounds decide/append rounds per command.
const DefaultMaxAttempts = 3

const tracerName = "github.com/louisbranch/taskboard/internal/services/project/domain/engine"

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrEventRegistryRequired indicates a missing event registry.
	ErrEventRegistryRequired = errors.New("event registry is required")
	// ErrJournalRequired indicates a missing journal.
	ErrJournalRequired = errors.New("journal is required")
)

// Handler validates, decides and persists project commands.
type Handler struct {
	Commands    *command.Registry
	Events      *event.Registry
	Journal     storage.Journal
	Now         func() time.Time
	MaxAttempts int
	Logger      *slog.Logger
	Tracer      trace.Tracer
	// PageSize is the replay page size; zero uses the replay default.
	PageSize int
}

// Result captures the persisted event and the state after applying it.
type Result struct {
	Event event.Event
	State project.State
}

type mode int

const (
	modeCreate mode = iota
	modeUpdate
)

func (m mode) String() string {
	if m == modeCreate {
		return "create"
	}
	return "update"
}

// NewRegistries builds command and event registries holding the project catalog.
func NewRegistries() (*command.Registry, *event.Registry, error) {
	commands := command.NewRegistry()
	if err := project.RegisterCommands(commands); err != nil {
		return nil, nil, fmt.Errorf("register commands: %w", err)
	}
	events := event.NewRegistry()
	if err := project.RegisterEvents(events); err != nil {
		return nil, nil, fmt.Errorf("register events: %w", err)
	}
	return commands, events, nil
}

// Create runs a command against a project stream that must be empty.
func (h Handler) Create(ctx context.Context, cmd command.Command) (Result, error) {
	return h.execute(ctx, cmd, modeCreate)
}

// Update runs a command against an existing project.
func (h Handler) Update(ctx context.Context, cmd command.Command) (Result, error) {
	return h.execute(ctx, cmd, modeUpdate)
}

// Load replays the project stream and returns the latest state and sequence.
func (h Handler) Load(ctx context.Context, projectID string) (project.State, uint64, error) {
	if h.Journal == nil {
		return project.State{}, 0, ErrJournalRequired
	}
	result, err := replay.Replay(ctx, h.Journal, project.Fold, projectID, project.State{}, replay.Options{PageSize: h.PageSize})
	if err != nil {
		return project.State{}, 0, err
	}
	return result.State, result.LastSeq, nil
}

// LoadExisting is Load with a not-found domain error for empty streams.
func (h Handler) LoadExisting(ctx context.Context, projectID string) (project.State, error) {
	state, _, err := h.Load(ctx, projectID)
	if err != nil {
		return project.State{}, apperrors.Wrap(apperrors.CodeInternal, "load project", err)
	}
	if !state.Created {
		return project.State{}, projectNotFound(projectID)
	}
	return state, nil
}

func (h Handler) execute(ctx context.Context, cmd command.Command, m mode) (Result, error) {
	ctx, span := h.tracer().Start(ctx, "project.command."+m.String(), trace.WithAttributes(
		attribute.String("project.id", cmd.ProjectID),
		attribute.String("command.type", string(cmd.Type)),
	))
	defer span.End()

	result, attempts, err := h.run(ctx, cmd, m)
	span.SetAttributes(attribute.Int("command.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.GetCode(err)))
		return Result{}, err
	}
	span.SetAttributes(attribute.Int64("event.seq", int64(result.Event.Seq)))
	return result, nil
}

func (h Handler) run(ctx context.Context, cmd command.Command, m mode) (Result, int, error) {
	if h.Commands == nil {
		return Result{}, 0, ErrCommandRegistryRequired
	}
	if h.Events == nil {
		return Result{}, 0, ErrEventRegistryRequired
	}
	if h.Journal == nil {
		return Result{}, 0, ErrJournalRequired
	}
	validated, err := h.Commands.ValidateForDecision(cmd)
	if err != nil {
		return Result{}, 0, apperrors.Wrap(apperrors.CodeRequestInvalid, err.Error(), err)
	}
	cmd = validated

	now := h.Now
	if now == nil {
		now = time.Now
	}
	maxAttempts := h.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastConflict error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		state, seq, err := h.Load(ctx, cmd.ProjectID)
		if err != nil {
			return Result{}, attempt, apperrors.Wrap(apperrors.CodeInternal, "load project", err)
		}
		switch {
		case m == modeCreate && seq > 0:
			return Result{}, attempt, apperrors.WithMetadata(apperrors.CodeProjectAlreadyExists, "project already exists", map[string]string{"project_id": cmd.ProjectID})
		case m == modeUpdate && !state.Created:
			return Result{}, attempt, projectNotFound(cmd.ProjectID)
		}

		decision := project.Decide(state, cmd, now)
		if decision.Rejected() {
			return Result{}, attempt, rejectionError(cmd, decision.Rejections[0])
		}
		events := make([]event.Event, 0, len(decision.Events))
		for _, evt := range decision.Events {
			vetted, err := h.Events.ValidateForAppend(evt)
			if err != nil {
				return Result{}, attempt, apperrors.Wrap(apperrors.CodeInternal, "invalid decided event", err)
			}
			events = append(events, vetted)
		}
		if len(events) == 0 {
			return Result{}, attempt, apperrors.New(apperrors.CodeInternal, "decision emitted no events")
		}

		appended, err := h.Journal.AppendEvents(ctx, cmd.ProjectID, seq, events)
		if errors.Is(err, storage.ErrVersionConflict) {
			lastConflict = err
			h.logger().DebugContext(ctx, "append conflict, retrying",
				slog.String("project_id", cmd.ProjectID),
				slog.String("command_type", string(cmd.Type)),
				slog.Int("attempt", attempt),
				slog.Uint64("expected_seq", seq),
			)
			continue
		}
		if err != nil {
			return Result{}, attempt, apperrors.Wrap(apperrors.CodeInternal, "append events", err)
		}

		next := state
		for _, evt := range appended {
			next, err = project.Fold(next, evt)
			if err != nil {
				return Result{}, attempt, wrapNonRetryable(apperrors.Wrap(apperrors.CodeInternal, "apply appended event", err))
			}
		}
		return Result{Event: appended[len(appended)-1], State: next}, attempt, nil
	}
	return Result{}, maxAttempts, apperrors.Wrap(apperrors.CodeConcurrencyConflict,
		fmt.Sprintf("project %s changed concurrently; gave up after %d attempts", cmd.ProjectID, maxAttempts),
		lastConflict)
}

func (h Handler) tracer() trace.Tracer {
	if h.Tracer != nil {
		return h.Tracer
	}
	return otel.Tracer(tracerName)
}

func (h Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func projectNotFound(projectID string) error {
	return apperrors.WithMetadata(apperrors.CodeProjectNotFound, "project not found", map[string]string{"project_id": projectID})
}

func rejectionError(cmd command.Command, rejection command.Rejection) error {
	return apperrors.WithMetadata(apperrors.Code(rejection.Code), rejection.Message, map[string]string{
		"project_id":   cmd.ProjectID,
		"command_type": string(cmd.Type),
	})
}
