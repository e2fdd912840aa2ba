// Package service defines the backend-agnostic interface for list operations.
package service

import (
	"context"

	"github.com/lherron/listsync/internal/domain"
)

// Service defines the remote operations the sync engine consumes.
// Every call honors ctx cancellation so abandoned requests never apply.
type Service interface {
	// GetListItems returns the authoritative snapshot of a list.
	GetListItems(ctx context.Context, listID string) (domain.Snapshot, error)

	// GetItem returns one fully populated item.
	GetItem(ctx context.Context, listID, itemID string) (domain.Item, error)

	// CreateItem creates an empty, not completed item shell.
	CreateItem(ctx context.Context, listID string) (domain.Item, error)

	// UpdateItem applies a flag patch (completed, refreshed) to an item.
	UpdateItem(ctx context.Context, listID, itemID string, patch domain.ItemPatch) error

	// DeleteItem deletes an item.
	DeleteItem(ctx context.Context, listID, itemID string) error

	// CreateField creates a field on an item.
	CreateField(ctx context.Context, listID, itemID string, input domain.FieldInput) (domain.Field, error)

	// UpdateField replaces the data of an existing field.
	UpdateField(ctx context.Context, listID, itemID, fieldID, data string) error

	// GetFieldConfigurations returns the field slots of a list configuration.
	GetFieldConfigurations(ctx context.Context, listConfigurationID string) ([]domain.FieldConfiguration, error)
}
