package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/store"
	"github.com/lherron/listsync/internal/testutil"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, tt.want, got)
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{})
	err := r.RenderTable([]string{"ID", "NAME"}, [][]string{{"1", "apple"}, {"22", "b"}})
	testutil.AssertNoError(t, err)

	want := "ID  NAME\n--  -----\n1   apple\n22  b\n"
	testutil.AssertEqual(t, want, buf.String())
}

func TestRenderTablePorcelain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Porcelain: true})
	err := r.RenderTable([]string{"ID", "NAME"}, [][]string{{"1", "apple"}})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "ID\tNAME\n1\tapple\n", buf.String())
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, NewRenderer(&buf, Options{}).RenderTable([]string{"ID"}, nil))
	testutil.AssertEqual(t, "", buf.String())
}

func TestRenderDispatch(t *testing.T) {
	data := map[string]int{"a": 1}
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "{\"a\":1}\n"},
		{FormatYAML, "a: 1\n"},
		{FormatTable, "K\n-\nv\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRenderer(&buf, Options{Format: tt.format, Porcelain: true})
			if tt.format == FormatTable {
				r = NewRenderer(&buf, Options{Format: tt.format})
			}
			testutil.AssertNoError(t, r.Render(data, []string{"K"}, [][]string{{"v"}}))
			testutil.AssertEqual(t, tt.want, buf.String())
		})
	}
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, NewRenderer(&buf, Options{}).RenderList([]string{"Produce", "Dairy"}))
	testutil.AssertEqual(t, "Produce\nDairy\n", buf.String())
}

func TestItemRow(t *testing.T) {
	item := testutil.NewItem("a", testutil.Day(0), testutil.Field(domain.LabelProduct, "Milk"), testutil.Field(domain.LabelCategory, " Dairy "))
	testutil.AssertEqual(t, "a|Milk|Dairy|open|2024-01-01", strings.Join(ItemRow(item, false), "|"))

	item.Completed = true
	testutil.AssertEqual(t, "done", ItemRow(item, false)[3])
	testutil.AssertEqual(t, "pending", ItemRow(item, true)[3])

	bare := domain.Item{ID: "b"}
	testutil.AssertEqual(t, "b|b|-|open|-", strings.Join(ItemRow(bare, false), "|"))
}

func testView() store.View {
	a := testutil.NewItem("a", testutil.Day(0), testutil.Field(domain.LabelProduct, "Apples"), testutil.Field(domain.LabelCategory, "Produce"))
	b := testutil.NewItem("b", testutil.Day(1), testutil.Field(domain.LabelProduct, "Bread"))
	c := testutil.NewItem("c", testutil.Day(2), testutil.Field(domain.LabelProduct, "Carrots"), testutil.Field(domain.LabelCategory, "produce"))
	d := testutil.CompletedItem("d", testutil.Day(3), testutil.Field(domain.LabelProduct, "Dates"))
	return store.View{
		NotCompleted: []domain.Item{a, b, c},
		Completed:    []domain.Item{d},
		Categories:   []string{"Produce"},
	}
}

func TestViewRowsGroupsByCategory(t *testing.T) {
	rows := ViewRows(testView())
	var ids []string
	for _, row := range rows {
		ids = append(ids, row[0])
	}
	testutil.AssertEqual(t, "a,c,b,d", strings.Join(ids, ","))
}

func TestViewRowsFiltered(t *testing.T) {
	v := testView()
	v.Filter = "Produce"
	v.Visible = v.NotCompleted[:1]
	rows := ViewRows(v)
	testutil.AssertEqual(t, 1, len(rows))
	testutil.AssertEqual(t, "a", rows[0][0])
}

func TestNewViewDoc(t *testing.T) {
	v := store.View{}
	doc := NewViewDoc(domain.List{ID: "L1"}, v)
	testutil.AssertEqual(t, 0, len(doc.NotCompleted))

	var buf bytes.Buffer
	testutil.AssertNoError(t, NewRenderer(&buf, Options{Format: FormatJSON}).RenderJSON(doc))
	testutil.AssertStringContains(t, buf.String(), `"not_completed_items": []`)
	testutil.AssertStringContains(t, buf.String(), `"categories": []`)

	filtered := testView()
	filtered.Filter = "Produce"
	filtered.Visible = filtered.NotCompleted[:1]
	doc = NewViewDoc(domain.List{ID: "L1"}, filtered)
	if len(doc.NotCompleted) != 1 || !strings.EqualFold(doc.Filter, "produce") {
		t.Errorf("filtered doc = %+v", doc)
	}
}
