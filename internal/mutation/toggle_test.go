package mutation

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/testutil"
)

func readValue(t *testing.T, item domain.Item) (string, bool) {
	t.Helper()
	f, ok := item.FieldByLabel(domain.LabelRead)
	return f.Value(), ok
}

func TestToggleFieldFlipsAndCreates(t *testing.T) {
	f := newFixture(t)

	rep := f.c.ToggleField(context.Background(), f.items(t, "a", "b", "c"), domain.LabelRead)

	if rep.Outcome != bulk.AllSucceeded || rep.Succeeded != 3 {
		t.Fatalf("report = %+v", rep)
	}
	if n := f.svc.Calls("GetFieldConfigurations"); n != 1 {
		t.Fatalf("GetFieldConfigurations calls = %d, want 1", n)
	}

	for _, id := range []string{"a", "b", "c"} {
		local, _, _ := f.st.Find(id)
		if v, ok := readValue(t, local); !ok || v != "true" {
			t.Errorf("local %s read = %q (present %v), want true", id, v, ok)
		}
		server, _ := f.svc.Item(testList.ID, id)
		if v, _ := readValue(t, server); v != "true" {
			t.Errorf("server %s read = %q, want true", id, v)
		}
	}

	b, _, _ := f.st.Find("b")
	field, _ := b.FieldByLabel(domain.LabelRead)
	if field.ID == "" || field.FieldConfigurationID != "cfg-read" || field.Position != 5 {
		t.Fatalf("created field = %+v", field)
	}

	assertNotices(t, f.rec, notify.Info, "3 items successfully updated.")
}

func TestToggleFieldSendsFlippedValueForExistingField(t *testing.T) {
	f := newFixture(t)
	before, _, _ := f.st.Find("a")
	if v, _ := readValue(t, before); v != "false" {
		t.Fatalf("fixture a read = %q, want false", v)
	}

	rep := f.c.ToggleField(context.Background(), f.items(t, "a"), domain.LabelRead)
	if rep.Outcome != bulk.AllSucceeded {
		t.Fatalf("report = %+v", rep)
	}

	server, _ := f.svc.Item(testList.ID, "a")
	if v, _ := readValue(t, server); v != "true" {
		t.Errorf("server read = %q, want true", v)
	}
	local, _, _ := f.st.Find("a")
	if v, _ := readValue(t, local); v != "true" {
		t.Errorf("local read = %q, want true", v)
	}
	if n := f.svc.Calls("CreateField"); n != 0 {
		t.Errorf("CreateField calls = %d, want 0", n)
	}
}

func TestToggledLeavesInputUntouched(t *testing.T) {
	item := testutil.NewItem("x", testutil.Day(0), testutil.Field(domain.LabelRead, "false"))

	flipped := toggled(item, domain.LabelRead)

	if v, _ := readValue(t, item); v != "false" {
		t.Errorf("input read = %q, want false", v)
	}
	if v, _ := readValue(t, flipped); v != "true" {
		t.Errorf("flipped read = %q, want true", v)
	}
}

func TestToggleFieldTwiceFlipsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.c.ToggleField(ctx, f.items(t, "a"), domain.LabelRead)
	f.c.ToggleField(ctx, f.items(t, "a"), domain.LabelRead)

	a, _, _ := f.st.Find("a")
	if v, _ := readValue(t, a); v != "false" {
		t.Fatalf("read = %q, want false", v)
	}
}

func TestToggleFieldIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.svc.UpdateFieldErr["a"] = testutil.Status(http.StatusInternalServerError, nil)

	rep := f.c.ToggleField(context.Background(), f.items(t, "a", "b"), domain.LabelRead)

	if rep.Outcome != bulk.AllFailed || rep.Failed != 2 || rep.Succeeded != 0 {
		t.Fatalf("report = %+v", rep)
	}

	a, _, _ := f.st.Find("a")
	if v, _ := readValue(t, a); v != "false" {
		t.Fatalf("a read = %q, want rolled back to false", v)
	}
	b, _, _ := f.st.Find("b")
	if _, ok := readValue(t, b); ok {
		t.Fatal("b kept its optimistic read field")
	}

	if len(rep.FailedIDs) != 2 {
		t.Fatalf("FailedIDs = %v, want both items", rep.FailedIDs)
	}
	if !errors.Is(rep.FailedIDs["b"], ErrRolledBack) {
		t.Errorf("b error = %v, want ErrRolledBack", rep.FailedIDs["b"])
	}
	if errors.Is(rep.FailedIDs["a"], ErrRolledBack) || errors.Is(rep.Err, ErrRolledBack) {
		t.Errorf("a should keep its own error, got %v (report err %v)", rep.FailedIDs["a"], rep.Err)
	}

	if n := len(f.rec.ByLevel(notify.Warning)); n != 0 {
		t.Fatalf("warnings = %d, want 0", n)
	}
	if n := len(f.rec.ByLevel(notify.Error)); n != 1 {
		t.Fatalf("errors = %d, want 1", n)
	}
}

func TestToggleFieldWithoutConfiguration(t *testing.T) {
	f := newFixture(t)

	f.c.ToggleField(context.Background(), f.items(t, "b"), "starred")

	assertNotices(t, f.rec, notify.Error, "no starred field is configured for this list")
	b, _, _ := f.st.Find("b")
	if _, ok := b.FieldByLabel("starred"); ok {
		t.Fatal("optimistic field not rolled back")
	}
}

func TestToggleFieldConfigurationLookupFails(t *testing.T) {
	f := newFixture(t)
	f.svc.GetFieldConfigurationsErr = testutil.NoResponse()

	rep := f.c.ToggleField(context.Background(), f.items(t, "b", "c"), domain.LabelRead)

	if rep.Outcome != bulk.AllFailed {
		t.Fatalf("outcome = %s", rep.Outcome)
	}
	if n := f.svc.Calls("GetFieldConfigurations"); n != 1 {
		t.Fatalf("GetFieldConfigurations calls = %d, want 1", n)
	}
}
