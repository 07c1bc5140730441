package planning

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/testutil"
)

var today = domain.NewDate(2025, 2, 10)

// sequentialKeys returns a key generator yielding "1", "2", ...
func sequentialKeys() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprint(n)
	}
}

func newTestList() *DraftList {
	return NewDraftList(testutil.FixedCalendar(today), WithKeyGenerator(sequentialKeys()))
}

func addDraft(t *testing.T, l *DraftList, desc, date, hours string) Draft {
	t.Helper()
	l.UpdateField(domain.FieldDescription, desc)
	l.UpdateField(domain.FieldPlanificationDate, date)
	l.UpdateField(domain.FieldNeededHours, hours)
	d, err := l.Add()
	require.NoError(t, err)
	return d
}

func ids(drafts []Draft) []string {
	out := make([]string, len(drafts))
	for i, d := range drafts {
		out[i] = d.ID.String()
	}
	return out
}

func TestDraftList_Add(t *testing.T) {
	// Setup
	l := newTestList()
	l.UpdateField(domain.FieldDescription, "  Read chapter 1  ")
	l.UpdateField(domain.FieldPlanificationDate, "2025-02-10")
	l.UpdateField(domain.FieldNeededHours, "1.5")

	// Execute
	d, err := l.Add()

	// Assert
	require.NoError(t, err)
	assert.True(t, d.ID.IsTemp())
	assert.Equal(t, "Read chapter 1", d.Description)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, domain.SubtaskFields{}, l.Pending())
	assert.Empty(t, l.Errors())
}

func TestDraftList_Add_InvalidLeavesListUnchanged(t *testing.T) {
	// Setup
	l := newTestList()
	addDraft(t, l, "First draft", "2025-02-10", "1")
	before := l.Drafts()

	for _, desc := range []string{"", "   ", "abcd", " ab "} {
		t.Run(fmt.Sprintf("%q", desc), func(t *testing.T) {
			l.UpdateField(domain.FieldDescription, desc)
			l.UpdateField(domain.FieldPlanificationDate, "2025-02-11")
			l.UpdateField(domain.FieldNeededHours, "2")

			// Execute
			_, err := l.Add()

			// Assert
			var verrs domain.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.True(t, verrs.Has(domain.FieldDescription))
			assert.Equal(t, before, l.Drafts())
			assert.True(t, l.Errors().Has(domain.FieldDescription))
			assert.Equal(t, desc, l.Pending().Description, "pending entry is kept for retry")
		})
	}
}

func TestDraftList_Add_DateBoundary(t *testing.T) {
	l := newTestList()

	l.SetPending(domain.SubtaskFields{Description: "Past draft", PlanificationDate: "2025-02-09", NeededHours: "1"})
	_, err := l.Add()
	assert.Error(t, err)
	assert.Equal(t, domain.MsgDateInPast, l.Errors()[domain.FieldPlanificationDate])

	l.SetPending(domain.SubtaskFields{Description: "Today draft", PlanificationDate: "2025-02-10", NeededHours: "1"})
	_, err = l.Add()
	assert.NoError(t, err)
}

func TestDraftList_Add_HoursBoundary(t *testing.T) {
	tests := []struct {
		hours string
		ok    bool
	}{
		{"0.4", false},
		{"0.5", true},
		{"12", true},
		{"24", true},
		{"24.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.hours, func(t *testing.T) {
			l := newTestList()
			l.SetPending(domain.SubtaskFields{Description: "Hours draft", PlanificationDate: "2025-02-10", NeededHours: tt.hours})
			_, err := l.Add()
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, 1, l.Len())
			} else {
				assert.Error(t, err)
				assert.Zero(t, l.Len())
			}
		})
	}
}

func TestDraftList_UpdateField_ClearsOnlyThatError(t *testing.T) {
	// Setup
	l := newTestList()
	_, err := l.Add()
	require.Error(t, err)
	require.Len(t, l.Errors(), 3)

	// Execute
	l.UpdateField(domain.FieldNeededHours, "abc")

	// Assert
	errs := l.Errors()
	assert.False(t, errs.Has(domain.FieldNeededHours))
	assert.True(t, errs.Has(domain.FieldDescription))
	assert.True(t, errs.Has(domain.FieldPlanificationDate))
}

func TestDraftList_IDsNeverReused(t *testing.T) {
	l := NewDraftList(testutil.FixedCalendar(today))
	a := addDraft(t, l, "Draft one", "2025-02-10", "1")
	l.Remove(a.ID)
	b := addDraft(t, l, "Draft two", "2025-02-10", "1")

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, b.ID.IsTemp())
}

func TestDraftList_TotalHours(t *testing.T) {
	l := newTestList()
	addDraft(t, l, "Draft one", "2025-02-10", "1.5")
	addDraft(t, l, "Draft two", "2025-02-11", "2.0")
	c := addDraft(t, l, "Draft three", "2025-02-12", "0.5")

	assert.InDelta(t, 4.0, l.TotalHours(), 1e-9)

	l.Remove(c.ID)
	assert.InDelta(t, 3.5, l.TotalHours(), 1e-9)
}

func TestDraftList_Remove(t *testing.T) {
	// Setup
	l := newTestList()
	a := addDraft(t, l, "Draft A", "2025-02-10", "1")
	addDraft(t, l, "Draft B", "2025-02-10", "1")
	addDraft(t, l, "Draft C", "2025-02-10", "1")

	// Execute
	l.Remove(a.ID)

	// Assert
	assert.Equal(t, []string{"temp-2", "temp-3"}, ids(l.Drafts()))
}

func TestDraftList_Remove_UnknownIsNoop(t *testing.T) {
	l := newTestList()
	addDraft(t, l, "Draft A", "2025-02-10", "1")
	addDraft(t, l, "Draft B", "2025-02-10", "1")
	before := l.Drafts()

	l.Remove(domain.TempID("missing"))
	l.Remove(domain.PersistedID(1))
	l.Remove(domain.SubtaskID{})

	assert.Equal(t, before, l.Drafts())
}

func TestDraftList_Reorder(t *testing.T) {
	tests := []struct {
		name    string
		dragged domain.SubtaskID
		target  domain.SubtaskID
		want    []string
	}{
		{"first onto last", domain.TempID("1"), domain.TempID("3"), []string{"temp-2", "temp-3", "temp-1"}},
		{"last onto first", domain.TempID("3"), domain.TempID("1"), []string{"temp-3", "temp-1", "temp-2"}},
		{"first onto middle", domain.TempID("1"), domain.TempID("2"), []string{"temp-2", "temp-1", "temp-3"}},
		{"same id", domain.TempID("2"), domain.TempID("2"), []string{"temp-1", "temp-2", "temp-3"}},
		{"missing dragged", domain.TempID("9"), domain.TempID("1"), []string{"temp-1", "temp-2", "temp-3"}},
		{"missing target", domain.TempID("1"), domain.TempID("9"), []string{"temp-1", "temp-2", "temp-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList()
			addDraft(t, l, "Draft A", "2025-02-10", "1")
			addDraft(t, l, "Draft B", "2025-02-10", "2")
			addDraft(t, l, "Draft C", "2025-02-10", "3")

			l.Reorder(tt.dragged, tt.target)

			assert.Equal(t, tt.want, ids(l.Drafts()))
			assert.InDelta(t, 6.0, l.TotalHours(), 1e-9)
		})
	}
}

func TestDraftList_Move(t *testing.T) {
	l := newTestList()
	addDraft(t, l, "Draft A", "2025-02-10", "1")
	addDraft(t, l, "Draft B", "2025-02-10", "1")
	addDraft(t, l, "Draft C", "2025-02-10", "1")

	l.Move(domain.TempID("1"), 1)
	assert.Equal(t, []string{"temp-2", "temp-1", "temp-3"}, ids(l.Drafts()))

	l.Move(domain.TempID("3"), -1)
	assert.Equal(t, []string{"temp-2", "temp-3", "temp-1"}, ids(l.Drafts()))

	l.Move(domain.TempID("2"), -5)
	assert.Equal(t, []string{"temp-2", "temp-3", "temp-1"}, ids(l.Drafts()))

	l.Move(domain.TempID("2"), 10)
	assert.Equal(t, []string{"temp-3", "temp-1", "temp-2"}, ids(l.Drafts()))
}

func TestDraftList_DraftsIsCopy(t *testing.T) {
	l := newTestList()
	addDraft(t, l, "Draft A", "2025-02-10", "1")

	drafts := l.Drafts()
	drafts[0].Description = "mutated"

	assert.Equal(t, "Draft A", l.Drafts()[0].Description)
}

func TestDraftList_ResetAndSeed(t *testing.T) {
	l := newTestList()
	addDraft(t, l, "Draft A", "2025-02-10", "1")
	l.UpdateField(domain.FieldDescription, "half typed")
	_, _ = l.Add()

	l.Reset()

	assert.Zero(t, l.Len())
	assert.Equal(t, domain.SubtaskFields{}, l.Pending())
	assert.Empty(t, l.Errors())

	l.Seed(
		domain.SubtaskValues{Description: "Seeded one", PlanificationDate: today, NeededHours: 2},
		domain.SubtaskValues{Description: "Seeded two", PlanificationDate: today, NeededHours: 1},
	)
	assert.Equal(t, 2, l.Len())
	assert.InDelta(t, 3.0, l.TotalHours(), 1e-9)
	assert.Equal(t, "Seeded one", l.Values()[0].Description)
	assert.True(t, l.Drafts()[1].ID.IsTemp())
}

func TestDraftList_LongDescription(t *testing.T) {
	l := newTestList()
	l.SetPending(domain.SubtaskFields{Description: strings.Repeat("x", 301), PlanificationDate: "2025-02-10", NeededHours: "1"})

	_, err := l.Add()

	assert.Error(t, err)
	assert.Equal(t, domain.MsgDescriptionTooLong, l.Errors()[domain.FieldDescription])
}
