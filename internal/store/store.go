package store

import (
	"context"

	"github.com/me/bioexec/pkg/model"
)

// Store defines the persistence layer for the invocation history.
type Store interface {
	SaveInvocation(ctx context.Context, rec *model.InvocationRecord) error
	GetInvocation(ctx context.Context, id string) (*model.InvocationRecord, error)
	ListInvocations(ctx context.Context, opts model.ListOptions) ([]*model.InvocationRecord, int, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
