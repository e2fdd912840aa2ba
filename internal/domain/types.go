package domain

import (
	"strings"
	"time"
)

// Well-known field labels. An item carries zero or one field per well-known label.
const (
	LabelCategory = "category"
	LabelRead     = "read"
	LabelProduct  = "product"
)

// ListType represents the kind of list an item belongs to
type ListType string

const (
	ListTypeBook    ListType = "BookList"
	ListTypeGrocery ListType = "GroceryList"
	ListTypeMusic   ListType = "MusicList"
	ListTypeSimple  ListType = "SimpleList"
	ListTypeToDo    ListType = "ToDoList"
)

// Noun returns the singular noun used when talking about items of this list type.
func (t ListType) Noun() string {
	switch t {
	case ListTypeBook:
		return "book"
	case ListTypeMusic:
		return "song"
	case ListTypeToDo:
		return "task"
	default:
		return "item"
	}
}

// Conjunction joins the last pair of server validation messages for this list type.
func (t ListType) Conjunction() string {
	return "and"
}

// List identifies the list a session operates on
type List struct {
	ID                  string   `json:"id" yaml:"id"`
	Name                string   `json:"name" yaml:"name"`
	Type                ListType `json:"type" yaml:"type"`
	ListConfigurationID string   `json:"list_item_configuration_id" yaml:"list_item_configuration_id"`
}

// Field is one labelled value on an item
type Field struct {
	ID                   string  `json:"id" yaml:"id"`
	Label                string  `json:"label" yaml:"label"`
	Data                 *string `json:"data" yaml:"data"`
	FieldConfigurationID string  `json:"list_item_field_configuration_id" yaml:"list_item_field_configuration_id"`
	Position             int     `json:"position" yaml:"position"`
}

// Value returns the field data, or "" when the field has none.
func (f Field) Value() string {
	if f.Data == nil {
		return ""
	}
	return *f.Data
}

// Item represents a list item
type Item struct {
	ID        string     `json:"id" yaml:"id"`
	Completed bool       `json:"completed" yaml:"completed"`
	Refreshed bool       `json:"refreshed" yaml:"refreshed"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" yaml:"updated_at"`
	Fields    []Field    `json:"fields" yaml:"fields"`
}

// FieldByLabel returns the first field carrying label.
func (i Item) FieldByLabel(label string) (Field, bool) {
	for _, f := range i.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return Field{}, false
}

// CategoryValue returns the raw category data of the item, or "" when it has no category field.
func (i Item) CategoryValue() string {
	f, ok := i.FieldByLabel(LabelCategory)
	if !ok {
		return ""
	}
	return f.Value()
}

// Title returns a short human readable label for the item: the first non-empty field
// by position.
func (i Item) Title() string {
	best := -1
	title := ""
	for _, f := range i.Fields {
		v := strings.TrimSpace(f.Value())
		if v == "" || f.Label == LabelCategory || f.Label == LabelRead {
			continue
		}
		if best == -1 || f.Position < best {
			best = f.Position
			title = v
		}
	}
	if title == "" {
		return i.ID
	}
	return title
}

// Clone returns a deep copy of the item so callers can edit fields without
// touching bucket-owned state.
func (i Item) Clone() Item {
	out := i
	if i.UpdatedAt != nil {
		u := *i.UpdatedAt
		out.UpdatedAt = &u
	}
	if i.Fields != nil {
		out.Fields = make([]Field, len(i.Fields))
		for n, f := range i.Fields {
			if f.Data != nil {
				d := *f.Data
				f.Data = &d
			}
			out.Fields[n] = f
		}
	}
	return out
}

// FieldConfiguration describes a field slot available on items of a list configuration
type FieldConfiguration struct {
	ID                  string `json:"id" yaml:"id"`
	Label               string `json:"label" yaml:"label"`
	DataType            string `json:"data_type" yaml:"data_type"`
	Position            int    `json:"position" yaml:"position"`
	ListConfigurationID string `json:"list_item_configuration_id" yaml:"list_item_configuration_id"`
}

// Snapshot is the authoritative state of a list as returned by the server
type Snapshot struct {
	NotCompletedItems []Item   `json:"not_completed_items" yaml:"not_completed_items"`
	CompletedItems    []Item   `json:"completed_items" yaml:"completed_items"`
	Categories        []string `json:"categories" yaml:"categories"`
}

// ItemPatch is a partial update of an item's flags. Nil fields are left unchanged.
type ItemPatch struct {
	Completed *bool `json:"completed,omitempty"`
	Refreshed *bool `json:"refreshed,omitempty"`
}

// FieldInput is the payload for creating a field on an item
type FieldInput struct {
	Label                string `json:"label,omitempty"`
	Data                 string `json:"data"`
	FieldConfigurationID string `json:"list_item_field_configuration_id"`
	Position             int    `json:"position"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
