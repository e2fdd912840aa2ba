package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lherron/listsync/internal/domain"
)

// Epoch is the creation time of the first fixture item.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Day returns Epoch shifted by n days.
func Day(n int) time.Time {
	return Epoch.AddDate(0, 0, n)
}

// Field builds a field fixture. ID and position are filled in by NewItem.
func Field(label, data string) domain.Field {
	return domain.Field{Label: label, Data: domain.StringPtr(data)}
}

// NullField builds a field fixture whose data is null.
func NullField(label string) domain.Field {
	return domain.Field{Label: label}
}

// NewItem builds a not completed item fixture.
func NewItem(id string, createdAt time.Time, fields ...domain.Field) domain.Item {
	item := domain.Item{ID: id, CreatedAt: createdAt}
	for i, f := range fields {
		if f.ID == "" {
			f.ID = fmt.Sprintf("%s-%s", id, f.Label)
		}
		if f.FieldConfigurationID == "" {
			f.FieldConfigurationID = "cfg-" + f.Label
		}
		if f.Position == 0 {
			f.Position = i
		}
		item.Fields = append(item.Fields, f)
	}
	return item
}

// CompletedItem builds a completed item fixture.
func CompletedItem(id string, createdAt time.Time, fields ...domain.Field) domain.Item {
	item := NewItem(id, createdAt, fields...)
	item.Completed = true
	return item
}

// IDs returns the ids of items in order.
func IDs(items []domain.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes content to a file in a temporary directory
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertEqual asserts that two values are equal
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
}

// AssertIDs asserts that items carry exactly the expected ids in order
func AssertIDs(t *testing.T, expected []string, items []domain.Item) {
	t.Helper()
	got := IDs(items)
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Fatalf("Expected ids %v, got %v", expected, got)
	}
}

// AssertStringContains asserts that a string contains a substring
func AssertStringContains(t *testing.T, str, substr string) {
	t.Helper()
	if !strings.Contains(str, substr) {
		t.Fatalf("Expected string to contain %q, got %q", substr, str)
	}
}
