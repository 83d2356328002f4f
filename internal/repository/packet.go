package repository

import (
	"context"

	"claimsapi/internal/model"
)

// PacketRepository defines data access for processed packets using SQL only.
// No business logic here, strictly persistence operations.
type PacketRepository interface {
	// Create inserts a new packet record, including its result JSON.
	// Returns the stored packet (may include values set by the DB).
	Create(ctx context.Context, p *model.Packet) (*model.Packet, error)

	// FindByID returns a packet by its ID, result included.
	FindByID(ctx context.Context, id string) (*model.Packet, error)

	// List returns a paginated list of packets and the total row count.
	// Result JSON is included per row.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Packet], error)

	// Delete removes a packet by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
