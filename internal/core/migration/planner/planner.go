// Package planner compiles migration intents into batches of remote requests.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
)

// Compiler turns one script direction into an execution plan.
type Compiler interface {
	Compile(ctx context.Context, session domain.Session, intents intent.List) (*domain.Plan, error)
}

// PlanCompiler implements the Compiler interface.
type PlanCompiler struct{}

// NewPlanCompiler creates a new plan compiler.
func NewPlanCompiler() *PlanCompiler {
	return &PlanCompiler{}
}

// Compile fetches the content types referenced by intents once, then
// compiles every intent in order against the predicted state. Validation
// and runtime errors are attached to the batch of the intent that caused
// them; the returned error is reserved for context cancellation.
func (c *PlanCompiler) Compile(ctx context.Context, session domain.Session, intents intent.List) (*domain.Plan, error) {
	state := intent.NewPlanState(session.SpaceID(), session.EnvironmentID())
	for _, in := range intents {
		id := in.ContentTypeID()
		if id == "" || state.Tracked(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.track(ctx, session, state, id)
	}

	plan := &domain.Plan{}
	for _, in := range intents {
		if errs := in.Validate(); len(errs) > 0 {
			plan.Batches = append(plan.Batches, &domain.ExecutionBatch{
				Intent:           in.Describe(),
				ValidationErrors: errs,
			})
			continue
		}

		batch, err := in.ToBatch(state)
		if err != nil {
			plan.Batches = append(plan.Batches, &domain.ExecutionBatch{
				Intent:        in.Describe(),
				RuntimeErrors: []*domain.RuntimeError{{Intent: in.Describe(), Err: err}},
			})
			continue
		}
		plan.Batches = append(plan.Batches, batch)
	}

	debug.Debug("Compiled plan", "batches", len(plan.Batches), "requests", plan.RequestCount())
	return plan, nil
}

func (c *PlanCompiler) track(ctx context.Context, session domain.Session, state *intent.PlanState, id string) {
	ct, err := session.ContentType(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		state.Track(id, nil, nil, nil)
		return
	}
	if err != nil {
		state.Track(id, nil, nil, fmt.Errorf("failed to fetch content type %s: %w", id, err))
		return
	}

	var editor *domain.EditorInterface
	if ct.Sys.IsPublished() {
		editor, err = session.EditorInterface(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			state.Track(id, nil, nil, fmt.Errorf("failed to fetch editor interface of %s: %w", id, err))
			return
		}
	}
	state.Track(id, ct, editor, nil)
}

// Ensure PlanCompiler implements Compiler interface.
var _ Compiler = (*PlanCompiler)(nil)
