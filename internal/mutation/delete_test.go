package mutation

import (
	"context"
	"net/http"
	"testing"

	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/testutil"
)

func TestDeleteRemovesFromEitherBucket(t *testing.T) {
	f := newFixture(t)

	rep := f.c.Delete(context.Background(), f.items(t, "a", "d"))

	if rep.Outcome != bulk.AllSucceeded {
		t.Fatalf("report = %+v", rep)
	}
	v := f.st.View()
	testutil.AssertIDs(t, []string{"b", "c"}, v.NotCompleted)
	testutil.AssertIDs(t, nil, v.Completed)
	testutil.AssertIDs(t, []string{"b", "c"}, f.svc.Items(testList.ID))

	if len(v.Categories) != 1 || v.Categories[0] != "Dairy" {
		t.Fatalf("categories = %v, want [Dairy]", v.Categories)
	}
	assertNotices(t, f.rec, notify.Info, "2 items successfully deleted.")
}

func TestDeleteDroppingFilteredCategoryKeepsFilter(t *testing.T) {
	f := newFixture(t)
	f.st.SetFilter("Dairy")

	f.c.Delete(context.Background(), f.items(t, "b"))

	v := f.st.View()
	if v.Filter != "Dairy" || !v.FilterMissing {
		t.Fatalf("filter = %q missing = %v, want Dairy flagged missing", v.Filter, v.FilterMissing)
	}
	if len(v.Visible) != 0 {
		t.Fatalf("visible = %v, want empty", testutil.IDs(v.Visible))
	}
}

func TestDeletePartialFailureRestoresFailedItem(t *testing.T) {
	f := newFixture(t)
	f.svc.DeleteItemErr["d"] = testutil.Status(http.StatusInternalServerError, nil)

	rep := f.c.Delete(context.Background(), f.items(t, "a", "d"))

	if rep.Outcome != bulk.PartiallyFailed {
		t.Fatalf("outcome = %s", rep.Outcome)
	}
	v := f.st.View()
	testutil.AssertIDs(t, []string{"b", "c"}, v.NotCompleted)
	testutil.AssertIDs(t, []string{"d"}, v.Completed)

	want := []string{"Dairy", "Bakery"}
	if len(v.Categories) != 2 || v.Categories[0] != want[0] || v.Categories[1] != want[1] {
		t.Fatalf("categories = %v, want %v", v.Categories, want)
	}
	assertNotices(t, f.rec, notify.Warning, "1 item successfully deleted. 1 item failed to delete.")
}
