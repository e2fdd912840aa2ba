package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/lherron/listsync/internal/category"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = &service.ResponseError{Status: http.StatusNotFound}

// Status builds a server error response with a field-level validation body.
func Status(code int, fields map[string][]string) error {
	var data json.RawMessage
	if fields != nil {
		data, _ = json.Marshal(fields)
	}
	return &service.ResponseError{Status: code, Data: data}
}

// NoResponse builds a transport failure.
func NoResponse() error {
	return &service.NoResponseError{Err: errors.New("connection refused")}
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.Mutex
	items   map[string][]domain.Item // listID -> items in creation order
	configs map[string][]domain.FieldConfiguration
	calls   map[string]int
	nextID  int

	// Error injection for testing
	GetListItemsErr           error
	GetItemErr                map[string]error // itemID -> error
	CreateItemErr             error
	UpdateItemErr             map[string]error
	DeleteItemErr             map[string]error
	CreateFieldErr            map[string]error
	UpdateFieldErr            map[string]error
	GetFieldConfigurationsErr error

	// OmitFieldsOnGet makes GetItem answer without fields.
	OmitFieldsOnGet bool

	// FetchGate, when set, holds GetListItems until it is closed or ctx ends.
	FetchGate chan struct{}
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		items:          make(map[string][]domain.Item),
		configs:        make(map[string][]domain.FieldConfiguration),
		calls:          make(map[string]int),
		GetItemErr:     make(map[string]error),
		UpdateItemErr:  make(map[string]error),
		DeleteItemErr:  make(map[string]error),
		CreateFieldErr: make(map[string]error),
		UpdateFieldErr: make(map[string]error),
	}
}

// AddItems adds items to a list.
func (f *FakeService) AddItems(listID string, items ...domain.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.items[listID] = append(f.items[listID], item.Clone())
	}
}

// AddFieldConfigurations registers the field slots of a list configuration.
func (f *FakeService) AddFieldConfigurations(listConfigurationID string, configs ...domain.FieldConfiguration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[listConfigurationID] = append(f.configs[listConfigurationID], configs...)
}

// Item returns the server copy of an item.
func (f *FakeService) Item(listID, itemID string) (domain.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(listID, itemID); i >= 0 {
		return f.items[listID][i].Clone(), true
	}
	return domain.Item{}, false
}

// Items returns the server copies of every item in a list.
func (f *FakeService) Items(listID string) []domain.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Item, len(f.items[listID]))
	for i, item := range f.items[listID] {
		out[i] = item.Clone()
	}
	return out
}

// Calls returns how many times a method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// GetListItems implements service.Service.
func (f *FakeService) GetListItems(ctx context.Context, listID string) (domain.Snapshot, error) {
	f.record("GetListItems")
	if f.FetchGate != nil {
		select {
		case <-f.FetchGate:
		case <-ctx.Done():
			return domain.Snapshot{}, ctx.Err()
		}
	}
	if f.GetListItemsErr != nil {
		return domain.Snapshot{}, f.GetListItemsErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	snap := domain.Snapshot{
		NotCompletedItems: []domain.Item{},
		CompletedItems:    []domain.Item{},
	}
	for _, item := range f.items[listID] {
		if item.Completed {
			snap.CompletedItems = append(snap.CompletedItems, item.Clone())
		} else {
			snap.NotCompletedItems = append(snap.NotCompletedItems, item.Clone())
		}
	}
	snap.Categories = category.Derive(f.items[listID])
	if snap.Categories == nil {
		snap.Categories = []string{}
	}
	return snap, nil
}

// GetItem implements service.Service.
func (f *FakeService) GetItem(ctx context.Context, listID, itemID string) (domain.Item, error) {
	f.record("GetItem")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.GetItemErr[itemID]; err != nil {
		return domain.Item{}, err
	}
	i := f.indexLocked(listID, itemID)
	if i < 0 {
		return domain.Item{}, ErrNotFound
	}
	item := f.items[listID][i].Clone()
	if f.OmitFieldsOnGet {
		item.Fields = nil
	}
	return item, nil
}

// CreateItem implements service.Service.
func (f *FakeService) CreateItem(ctx context.Context, listID string) (domain.Item, error) {
	f.record("CreateItem")
	if f.CreateItemErr != nil {
		return domain.Item{}, f.CreateItemErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item := domain.Item{
		ID:        fmt.Sprintf("srv-%d", f.nextID),
		CreatedAt: Day(1000 + f.nextID),
	}
	f.items[listID] = append(f.items[listID], item)
	return item.Clone(), nil
}

// UpdateItem implements service.Service.
func (f *FakeService) UpdateItem(ctx context.Context, listID, itemID string, patch domain.ItemPatch) error {
	f.record("UpdateItem")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.UpdateItemErr[itemID]; err != nil {
		return err
	}
	i := f.indexLocked(listID, itemID)
	if i < 0 {
		return ErrNotFound
	}
	item := &f.items[listID][i]
	if patch.Completed != nil {
		item.Completed = *patch.Completed
	}
	if patch.Refreshed != nil {
		item.Refreshed = *patch.Refreshed
	}
	return nil
}

// DeleteItem implements service.Service.
func (f *FakeService) DeleteItem(ctx context.Context, listID, itemID string) error {
	f.record("DeleteItem")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteItemErr[itemID]; err != nil {
		return err
	}
	i := f.indexLocked(listID, itemID)
	if i < 0 {
		return ErrNotFound
	}
	f.items[listID] = append(f.items[listID][:i], f.items[listID][i+1:]...)
	return nil
}

// CreateField implements service.Service.
func (f *FakeService) CreateField(ctx context.Context, listID, itemID string, input domain.FieldInput) (domain.Field, error) {
	f.record("CreateField")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.CreateFieldErr[itemID]; err != nil {
		return domain.Field{}, err
	}
	i := f.indexLocked(listID, itemID)
	if i < 0 {
		return domain.Field{}, ErrNotFound
	}
	f.nextID++
	field := domain.Field{
		ID:                   fmt.Sprintf("fld-%d", f.nextID),
		Label:                input.Label,
		Data:                 domain.StringPtr(input.Data),
		FieldConfigurationID: input.FieldConfigurationID,
		Position:             input.Position,
	}
	f.items[listID][i].Fields = append(f.items[listID][i].Fields, field)
	return field, nil
}

// UpdateField implements service.Service.
func (f *FakeService) UpdateField(ctx context.Context, listID, itemID, fieldID, data string) error {
	f.record("UpdateField")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.UpdateFieldErr[itemID]; err != nil {
		return err
	}
	i := f.indexLocked(listID, itemID)
	if i < 0 {
		return ErrNotFound
	}
	for n, field := range f.items[listID][i].Fields {
		if field.ID == fieldID {
			f.items[listID][i].Fields[n].Data = domain.StringPtr(data)
			return nil
		}
	}
	return ErrNotFound
}

// GetFieldConfigurations implements service.Service.
func (f *FakeService) GetFieldConfigurations(ctx context.Context, listConfigurationID string) ([]domain.FieldConfiguration, error) {
	f.record("GetFieldConfigurations")
	if f.GetFieldConfigurationsErr != nil {
		return nil, f.GetFieldConfigurationsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.FieldConfiguration, len(f.configs[listConfigurationID]))
	copy(out, f.configs[listConfigurationID])
	return out, nil
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeService) indexLocked(listID, itemID string) int {
	for i, item := range f.items[listID] {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

var _ service.Service = (*FakeService)(nil)
