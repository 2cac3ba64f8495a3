package adapter

import (
	"context"

	"class-access/internal/domain/model"
)

// AccessEventPublisher forwards committed access grants to downstream consumers.
// Delivery is best effort; callers never roll back on a publish failure.
// Implementations handed to use cases must return without waiting on the broker.
type AccessEventPublisher interface {
	PublishAccessGranted(ctx context.Context, ev model.AccessGrantedEvent) error
	Close() error
}
