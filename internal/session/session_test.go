package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/lherron/listsync/internal/apperr"
	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/store"
	"github.com/lherron/listsync/internal/testutil"
)

var testList = domain.List{ID: "L1", Name: "Books", Type: domain.ListTypeBook, ListConfigurationID: "LC1"}

func newSession(t *testing.T) (*Session, *testutil.FakeService, *notify.Recorder) {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddItems(testList.ID,
		testutil.NewItem("a", testutil.Day(0), testutil.Field("title", "Dune"), testutil.Field(domain.LabelCategory, "SciFi")),
		testutil.NewItem("b", testutil.Day(1), testutil.Field("title", "Emma")),
		testutil.NewItem("c", testutil.Day(2), testutil.Field("title", "Ubik"), testutil.Field(domain.LabelCategory, "scifi ")),
	)
	svc.AddFieldConfigurations(testList.ListConfigurationID, domain.FieldConfiguration{ID: "cfg-read", Label: domain.LabelRead, Position: 3})

	rec := &notify.Recorder{}
	s := New(Deps{Service: svc, List: testList, Notifier: rec})
	testutil.AssertNoError(t, s.Sync(context.Background()))
	return s, svc, rec
}

func TestSyncGroupsCategories(t *testing.T) {
	s, _, _ := newSession(t)

	v := s.View()
	if len(v.Categories) != 1 || v.Categories[0] != "SciFi" {
		t.Fatalf("categories = %v, want [SciFi]", v.Categories)
	}
	testutil.AssertIDs(t, []string{"b"}, v.Visible)

	s.Store.SetFilter("scifi")
	testutil.AssertIDs(t, []string{"a", "c"}, s.View().Visible)
}

func TestHandlersActOnSelection(t *testing.T) {
	s, svc, rec := newSession(t)
	ctx := context.Background()

	s.Store.Select("a", "c")
	rep := s.HandleComplete(ctx)

	if rep.Outcome != bulk.AllSucceeded || rep.Succeeded != 2 {
		t.Fatalf("report = %+v", rep)
	}
	testutil.AssertIDs(t, []string{"b"}, s.View().NotCompleted)
	if item, _ := svc.Item(testList.ID, "c"); !item.Completed {
		t.Fatal("server item c not completed")
	}
	assertLastNotice(t, rec, notify.Info, "2 books successfully completed.")

	// Selection was cleared by complete, so nothing else happens.
	rep = s.HandleDelete(ctx)
	if rep.Succeeded != 0 || rep.Failed != 0 {
		t.Fatalf("delete on empty selection = %+v", rep)
	}
}

func TestHandlersWithExplicitItems(t *testing.T) {
	s, svc, rec := newSession(t)
	ctx := context.Background()

	b, _, _ := s.Store.Find("b")
	s.HandleToggleField(ctx, domain.LabelRead, b)
	assertLastNotice(t, rec, notify.Info, "1 book successfully updated.")

	item, _ := svc.Item(testList.ID, "b")
	if f, ok := item.FieldByLabel(domain.LabelRead); !ok || f.Value() != "true" {
		t.Fatalf("server read field = %+v (present %v)", f, ok)
	}

	a, _, _ := s.Store.Find("a")
	s.HandleDelete(ctx, a)
	if _, _, ok := s.Store.Find("a"); ok {
		t.Fatal("a still in store")
	}
	if cats := s.View().Categories; len(cats) != 1 || cats[0] != "scifi" {
		t.Fatalf("categories = %v, want [scifi] from the remaining item", cats)
	}
}

func TestRefreshThenSyncDoesNotDuplicate(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()

	b, _, _ := s.Store.Find("b")
	s.HandleRefresh(ctx, b)
	testutil.AssertNoError(t, s.Sync(ctx))

	v := s.View()
	testutil.AssertIDs(t, []string{"a", "b", "c", "srv-1"}, v.NotCompleted)
	if len(v.Placeholders) != 0 {
		t.Fatalf("placeholders = %v", v.Placeholders)
	}
}

func TestRedirectOnUnauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItems(testList.ID, testutil.NewItem("a", testutil.Day(0)))
	svc.UpdateItemErr["a"] = testutil.Status(http.StatusUnauthorized, nil)

	var redirects []string
	s := New(Deps{Service: svc, List: testList, Redirect: func(p string) { redirects = append(redirects, p) }})
	ctx := context.Background()
	testutil.AssertNoError(t, s.Sync(ctx))

	a, _, _ := s.Store.Find("a")
	s.HandleComplete(ctx, a)

	svc.GetListItemsErr = testutil.Status(http.StatusUnauthorized, nil)
	testutil.AssertError(t, s.Sync(ctx))

	if len(redirects) != 2 || redirects[0] != apperr.SignInPath || redirects[1] != apperr.SignInPath {
		t.Fatalf("redirects = %v", redirects)
	}
}

func TestClearResetsChangeDetection(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()

	writes := 0
	unsubscribe := s.Store.Subscribe(func(store.View) { writes++ })
	defer unsubscribe()

	testutil.AssertNoError(t, s.Sync(ctx))
	if writes != 0 {
		t.Fatalf("writes = %d after identical sync, want 0", writes)
	}

	s.Clear()
	testutil.AssertNoError(t, s.Sync(ctx))
	if writes != 3 {
		t.Fatalf("writes = %d after Clear, want 3", writes)
	}
}

func assertLastNotice(t *testing.T, rec *notify.Recorder, level notify.Level, msg string) {
	t.Helper()
	notices := rec.Notices()
	if len(notices) == 0 {
		t.Fatal("no notices")
	}
	last := notices[len(notices)-1]
	if last.Level != level || last.Message != msg {
		t.Fatalf("last notice = %s %q, want %s %q", last.Level, last.Message, level, msg)
	}
}
