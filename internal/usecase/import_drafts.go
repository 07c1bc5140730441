package usecase

import (
	"context"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// ImportDraftsInput contains raw subtask entries, e.g. from a plan file.
type ImportDraftsInput struct {
	Entries []domain.SubtaskFields
}

// RejectedEntry is an entry that failed validation.
type RejectedEntry struct {
	Errors domain.ValidationErrors
	Entry  domain.SubtaskFields
	Index  int // 1-based position of the entry
}

// ImportDraftsOutput contains the accepted drafts and the rejected entries.
type ImportDraftsOutput struct {
	Drafts   *planning.DraftList
	Rejected []RejectedEntry
}

// ImportDrafts is the use case for turning raw entries into a draft list.
// Every entry goes through the same validation as the interactive form.
type ImportDrafts struct {
	cal domain.Calendar
}

// NewImportDrafts creates a new ImportDrafts use case.
func NewImportDrafts(cal domain.Calendar) *ImportDrafts {
	return &ImportDrafts{cal: cal}
}

// Execute adds every entry to a new draft list.
func (uc *ImportDrafts) Execute(_ context.Context, in ImportDraftsInput) (*ImportDraftsOutput, error) {
	if len(in.Entries) == 0 {
		return nil, domain.ErrNoDrafts
	}

	list := planning.NewDraftList(uc.cal)
	out := &ImportDraftsOutput{Drafts: list}
	for i, e := range in.Entries {
		list.SetPending(e)
		if _, err := list.Add(); err != nil {
			out.Rejected = append(out.Rejected, RejectedEntry{
				Index:  i + 1,
				Entry:  e,
				Errors: list.Errors(),
			})
		}
	}
	list.SetPending(domain.SubtaskFields{})

	return out, nil
}
