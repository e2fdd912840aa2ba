package domain

import (
	"fmt"
	"time"
)

// ParseListType validates a list type name
func ParseListType(s string) (ListType, error) {
	switch ListType(s) {
	case ListTypeBook, ListTypeGrocery, ListTypeMusic, ListTypeSimple, ListTypeToDo:
		return ListType(s), nil
	case "":
		return ListTypeSimple, nil
	default:
		return "", fmt.Errorf("invalid list type: must be one of: BookList, GroceryList, MusicList, SimpleList, ToDoList")
	}
}

// ValidateItem checks the fields the engine relies on
func ValidateItem(item Item) error {
	if item.ID == "" {
		return fmt.Errorf("invalid item: missing id")
	}
	if item.CreatedAt.IsZero() {
		return fmt.Errorf("invalid item %s: missing created_at", item.ID)
	}
	return nil
}

// ValidateTimestamp validates and parses an ISO8601 timestamp
func ValidateTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: expected ISO8601/RFC3339")
	}
	return t, nil
}

// FlipBool flips a boolean-coded field value. Anything other than "true" reads as false.
func FlipBool(s string) string {
	if s == "true" {
		return "false"
	}
	return "true"
}
