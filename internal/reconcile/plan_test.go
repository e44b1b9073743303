package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsync/internal/catalog"
)

func testMapping() catalog.Mapping {
	return catalog.Mapping{
		"Przeczytane":     {Status: "read"},
		"Teraz czytam":    {Status: "reading"},
		"Chcę przeczytać": {Status: "want-to-read"},
		"Posiadam":        {ListID: 555},
	}
}

func TestBuildPlanPartition(t *testing.T) {
	source := map[string]catalog.Book{
		"A1": {SourceID: "1", ISBN: "A1"},
		"A2": {SourceID: "2", ISBN: "A2"},
		"A3": {SourceID: "3", ISBN: "A3"},
	}
	sink := map[string]catalog.Book{
		"A2": {SourceID: "12", ISBN: "A2"},
		"A3": {SourceID: "13", ISBN: "A3"},
		"A4": {SourceID: "14", ISBN: "A4"},
	}

	plan := BuildPlan(source, sink, testMapping())

	assert.Equal(t, 2, plan.Shared)
	assert.Equal(t, 1, plan.MissingInSink)
	require.Len(t, plan.Creates, 1)
	assert.Equal(t, "A1", plan.Creates[0].ISBN)
}

func TestBuildPlanStatusChange(t *testing.T) {
	source := map[string]catalog.Book{
		"K": {SourceID: "1", ISBN: "K", Shelves: []string{"Przeczytane"}},
	}
	sink := map[string]catalog.Book{
		"K": {SourceID: "9", ISBN: "K", ID: 9, Status: "want-to-read", Lists: []int{1}},
	}

	plan := BuildPlan(source, sink, testMapping())

	require.Len(t, plan.Updates, 1)
	update := plan.Updates[0]
	assert.Equal(t, "read", update.Book.Status)
	assert.Equal(t, []int{1}, update.Book.Lists, "memberships stay untouched when no list tag mapped")
	assert.Empty(t, plan.Creates)
}

func TestBuildPlanNoChangeNoIntent(t *testing.T) {
	source := map[string]catalog.Book{
		"K": {SourceID: "1", ISBN: "K", Shelves: []string{"Przeczytane", "Posiadam"}},
	}
	sink := map[string]catalog.Book{
		"K": {SourceID: "9", ISBN: "K", Status: "read", Lists: []int{555}},
	}

	plan := BuildPlan(source, sink, testMapping())
	assert.Empty(t, plan.Updates, "already consistent books need no update call")
}

func TestBuildPlanListAddition(t *testing.T) {
	source := map[string]catalog.Book{
		"K": {SourceID: "1", ISBN: "K", Shelves: []string{"Posiadam"}},
	}
	sink := map[string]catalog.Book{
		"K": {SourceID: "9", ISBN: "K", Status: "read", Lists: []int{7}},
	}

	plan := BuildPlan(source, sink, testMapping())

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, []int{7, 555}, plan.Updates[0].Book.Lists, "sink's own lists are kept, never removed")
	assert.Equal(t, "read", plan.Updates[0].Book.Status, "status untouched when no status tag mapped")
}

func TestBuildPlanUnknownShelvesDeduplicated(t *testing.T) {
	source := map[string]catalog.Book{
		"K1": {SourceID: "1", ISBN: "K1", Shelves: []string{"Ulubione", "Przeczytane"}},
		"K2": {SourceID: "2", ISBN: "K2", Shelves: []string{"Ulubione", "Fantastyka"}},
	}
	sink := map[string]catalog.Book{
		"K1": {SourceID: "11", ISBN: "K1", Status: "read"},
		"K2": {SourceID: "12", ISBN: "K2"},
	}

	plan := BuildPlan(source, sink, testMapping())
	assert.Equal(t, []string{"Fantastyka", "Ulubione"}, plan.UnknownShelves)
}

func TestBuildPlanCreateCarriesMappedStatus(t *testing.T) {
	source := map[string]catalog.Book{
		"K": {SourceID: "1", ISBN: "K", Title: "Diuna", Shelves: []string{"Teraz czytam", "Posiadam"}},
	}

	plan := BuildPlan(source, map[string]catalog.Book{}, testMapping())

	require.Len(t, plan.Creates, 1)
	assert.Equal(t, "reading", plan.Creates[0].Status)
	assert.Equal(t, "Diuna", plan.Creates[0].Title)
}

func TestBuildPlanDoesNotMutateSinkBook(t *testing.T) {
	sinkBook := catalog.Book{SourceID: "9", ISBN: "K", Status: "want-to-read", Lists: []int{1}}
	source := map[string]catalog.Book{
		"K": {SourceID: "1", ISBN: "K", Shelves: []string{"Przeczytane", "Posiadam"}},
	}
	sink := map[string]catalog.Book{"K": sinkBook}

	_ = BuildPlan(source, sink, testMapping())

	assert.Equal(t, "want-to-read", sinkBook.Status)
	assert.Equal(t, []int{1}, sinkBook.Lists)
}
