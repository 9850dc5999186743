package identities

import (
	"context"

	"github.com/JaimeStill/idscan/pkg/pagination"
)

// System defines the public contract for identity record operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, cmd CreateCommand) (*Record, error)
}
