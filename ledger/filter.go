package ledger

import (
	"slices"
)

/***** Filter *****/

// Filter selects ledger records by book, by kind, and by position.
//
// All criteria are combined with AND, the values inside one criterion with OR.
// An empty criterion matches everything, so the zero Filter matches the whole ledger.
type Filter struct {
	bookIDs                  []int
	kinds                    []ActionKind
	sequenceNumberHigherThan MaxSequenceNumberUint
}

// BookIDs returns the book identifiers this Filter is restricted to.
func (f Filter) BookIDs() []int {
	return f.bookIDs
}

// Kinds returns the action kinds this Filter is restricted to.
func (f Filter) Kinds() []ActionKind {
	return f.kinds
}

// SequenceNumberHigherThan returns the exclusive lower bound on the record position.
func (f Filter) SequenceNumberHigherThan() MaxSequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// Matches reports whether the record at position seq holding action is selected.
func (f Filter) Matches(seq MaxSequenceNumberUint, action Action) bool {
	if seq <= f.sequenceNumberHigherThan {
		return false
	}

	if len(f.bookIDs) > 0 && !slices.Contains(f.bookIDs, action.BookID) {
		return false
	}

	if len(f.kinds) > 0 && !slices.Contains(f.kinds, action.Kind) {
		return false
	}

	return true
}

/***** FilterBuilder *****/

// FilterBuilder builds a Filter to be used by the ledger engines to select records.
type FilterBuilder struct {
	filter Filter
}

// BuildFilter creates a FilterBuilder which must eventually be finalized with Finalize().
func BuildFilter() FilterBuilder {
	return FilterBuilder{}
}

// MatchingAllActions directly creates an empty Filter, selecting the whole ledger.
func MatchingAllActions() Filter {
	return Filter{}
}

// ForBooks restricts the Filter to one or multiple books.
//
// It sanitizes the input:
//   - removing non-positive ids
//   - sorting the ids
//   - removing duplicate ids
func (fb FilterBuilder) ForBooks(bookID int, bookIDs ...int) FilterBuilder {
	all := append([]int{bookID}, bookIDs...)
	all = append(all, fb.filter.bookIDs...)
	all = slices.DeleteFunc(all, func(id int) bool { return id < 1 })
	slices.Sort(all)
	all = slices.Compact(all)
	fb.filter.bookIDs = slices.Clip(all)

	return fb
}

// OfKinds restricts the Filter to one or multiple action kinds.
//
// It sanitizes the input:
//   - removing unknown kinds
//   - sorting the kinds
//   - removing duplicate kinds
func (fb FilterBuilder) OfKinds(kind ActionKind, kinds ...ActionKind) FilterBuilder {
	all := append([]ActionKind{kind}, kinds...)
	all = append(all, fb.filter.kinds...)
	all = slices.DeleteFunc(all, func(k ActionKind) bool { return !k.IsValid() })
	slices.Sort(all)
	all = slices.Compact(all)
	fb.filter.kinds = slices.Clip(all)

	return fb
}

// WithSequenceNumberHigherThan only selects records positioned after seq.
func (fb FilterBuilder) WithSequenceNumberHigherThan(seq MaxSequenceNumberUint) FilterBuilder {
	fb.filter.sequenceNumberHigherThan = seq

	return fb
}

// Finalize returns the built Filter.
func (fb FilterBuilder) Finalize() Filter {
	return fb.filter
}
