package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/dedup"
	"github.com/lherron/listsync/internal/domain"
)

// ErrRolledBack marks items of a toggle that were undone because another
// item failed.
var ErrRolledBack = errors.New("rolled back because another item failed")

// ToggleField flips the boolean field labelled label on every item,
// creating the field where it is missing. The operation is all or nothing:
// one failed item rolls every item back locally and yields a single
// failure notice.
func (c *Coordinator) ToggleField(ctx context.Context, items []domain.Item, label string, opts ...Option) Report {
	if len(items) == 0 {
		return Report{Op: OpToggle, Outcome: bulk.AllSucceeded}
	}
	defer c.begin()()

	originals := make(map[string]domain.Item, len(items))
	for _, item := range items {
		if current, _, ok := c.deps.Store.Find(item.ID); ok {
			originals[item.ID] = current
			c.deps.Store.Replace(toggled(current, label))
		}
	}

	resolve := sync.OnceValues(func() ([]domain.FieldConfiguration, error) {
		cfgID := c.deps.List.ListConfigurationID
		return dedup.Do(ctx, c.deps.Dedup, "field-configurations-"+cfgID, func() ([]domain.FieldConfiguration, error) {
			return c.deps.Service.GetFieldConfigurations(ctx, cfgID)
		})
	})

	var mu sync.Mutex
	created := make(map[string]domain.Field)

	result := c.run(ctx, items, func(ctx context.Context, item domain.Item) error {
		listID := c.deps.List.ID
		if original, ok := originals[item.ID]; ok {
			item = original
		}
		if f, ok := item.FieldByLabel(label); ok {
			return c.deps.Service.UpdateField(ctx, listID, item.ID, f.ID, domain.FlipBool(f.Value()))
		}

		configs, err := resolve()
		if err != nil {
			return err
		}
		cfg, ok := configFor(configs, label)
		if !ok {
			return fmt.Errorf("no %s field is configured for this list", label)
		}
		field, err := c.deps.Service.CreateField(ctx, listID, item.ID, domain.FieldInput{
			Label:                label,
			Data:                 domain.FlipBool(""),
			FieldConfigurationID: cfg.ID,
			Position:             cfg.Position,
		})
		if err != nil {
			return err
		}
		mu.Lock()
		created[item.ID] = field
		mu.Unlock()
		return nil
	})

	if result.Failed > 0 {
		for _, original := range originals {
			c.deps.Store.Replace(original)
		}
		// One failure fails the whole toggle.
		result.Succeeded = 0
		result.Failed = result.TotalItems
		failed := result.FailedKeys()
		for _, item := range items {
			if _, ok := failed[item.ID]; !ok {
				result.Errors = append(result.Errors, bulk.ItemError{Item: item.ID, Err: ErrRolledBack})
			}
		}
	} else {
		for id, field := range created {
			if current, _, ok := c.deps.Store.Find(id); ok {
				c.deps.Store.Replace(withField(current, field))
			}
		}
	}

	return c.settle(OpToggle, result, opts)
}

// toggled returns a copy of item with the boolean field label flipped, or
// added as "true" when absent.
func toggled(item domain.Item, label string) domain.Item {
	item = item.Clone()
	for i, f := range item.Fields {
		if f.Label == label {
			item.Fields[i].Data = domain.StringPtr(domain.FlipBool(f.Value()))
			return item
		}
	}
	item.Fields = append(item.Fields, domain.Field{Label: label, Data: domain.StringPtr(domain.FlipBool(""))})
	return item
}

// withField replaces the field carrying the same label with field.
func withField(item domain.Item, field domain.Field) domain.Item {
	item = item.Clone()
	for i, f := range item.Fields {
		if f.Label == field.Label {
			item.Fields[i] = field
			return item
		}
	}
	item.Fields = append(item.Fields, field)
	return item
}

func configFor(configs []domain.FieldConfiguration, label string) (domain.FieldConfiguration, bool) {
	for _, cfg := range configs {
		if cfg.Label == label {
			return cfg, true
		}
	}
	return domain.FieldConfiguration{}, false
}
