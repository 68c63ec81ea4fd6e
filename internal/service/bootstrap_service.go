package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/bootstrap"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/store"
)

// Confirmer asks the user a yes/no question.
type Confirmer func(question string) (bool, error)

// BootstrapInput represents input for bootstrapping an environment.
type BootstrapInput struct {
	Credentials domain.Credentials
	// WriteState overwrites the persisted state with the generated scripts.
	WriteState bool
	// Confirm is asked twice before the state is overwritten. Nil means yes.
	Confirm     Confirmer
	Concurrency int
}

// BootstrapService regenerates baseline scripts from an environment.
type BootstrapService struct {
	migrations *MigrationService
}

// NewBootstrapService creates a new bootstrap service sharing the
// gateway, storage and scripts directory of migrations.
func NewBootstrapService(migrations *MigrationService) *BootstrapService {
	return &BootstrapService{migrations: migrations}
}

// Bootstrap deletes the scripts directory and writes one create script per
// content type. Only the state rewrite is confirmed; declining it still
// regenerates the scripts.
func (s *BootstrapService) Bootstrap(ctx context.Context, in BootstrapInput) ([]domain.CreatedFile, error) {
	m := s.migrations

	if in.WriteState && in.Confirm != nil {
		ok, err := confirmStateRewrite(in.Confirm, in.Credentials.SpaceID)
		if err != nil {
			return nil, err
		}
		in.WriteState = ok
	}

	sess, err := m.open(ctx, RunInput{Credentials: in.Credentials})
	if err != nil {
		return nil, err
	}
	if in.WriteState {
		if _, err := sess.store.Load(ctx); errors.Is(err, domain.ErrContentTypeMissing) {
			if err := sess.store.Init(ctx); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}

	gen := bootstrap.NewGenerator(sess.remote, m.storage, sess.store, m.reporter)
	return gen.Bootstrap(ctx, bootstrap.Options{
		Dir:         m.dir,
		Concurrency: in.Concurrency,
		WriteState:  in.WriteState,
		Now:         m.now,
	})
}

func confirmStateRewrite(confirm Confirmer, spaceID string) (bool, error) {
	ok, err := confirm("Do you want to generate initial migration state for ALL content types?")
	if err != nil || !ok {
		return false, err
	}
	return confirm(fmt.Sprintf("This overwrites the migration state of every content type in space %s. Are you sure?", spaceID))
}

// Ensure Store implements StateWriter interface.
var _ bootstrap.StateWriter = (*store.Store)(nil)
