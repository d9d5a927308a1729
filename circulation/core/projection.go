package core

import (
	"cmp"
	"slices"

	"github.com/bookledger/lendingledger/ledger"
)

// Projection is an incrementally maintained index over the ledger.
//
// Folding a ledger through Apply yields the same answers as the scan functions
// (LoanedBookIDs, ReservedBookIDs, OpenActions, StatusOf, LastActionFor) for that ledger.
// A Projection is not safe for concurrent use; use Clone to hand out a snapshot.
type Projection struct {
	books          map[int]*bookState
	position       uint64
	sequenceNumber ledger.MaxSequenceNumberUint
}

type openEntry struct {
	position uint64
	action   ledger.Action
}

type bookState struct {
	loans        []openEntry
	reservations []openEntry
	last         ledger.Action
}

// NewProjection creates the Projection of an empty ledger.
func NewProjection() *Projection {
	return &Projection{books: make(map[int]*bookState)}
}

// Apply folds the next record of the ledger into the Projection.
func (p *Projection) Apply(action ledger.Action) {
	p.position++
	entry := openEntry{position: p.position, action: action}

	book, ok := p.books[action.BookID]
	if !ok {
		book = &bookState{}
		p.books[action.BookID] = book
	}

	book.last = action

	switch action.Kind {
	case ledger.ActionOut:
		book.reservations = book.closeReservation(action.MemberID)
		book.loans = append(book.loans, entry)

	case ledger.ActionReturn:
		if n := len(book.loans); n > 0 {
			book.loans = book.loans[:n-1]
		}

	case ledger.ActionReserve:
		book.reservations = append(book.reservations, entry)

	case ledger.ActionDereserve:
		book.reservations = book.closeReservation(action.MemberID)
	}
}

// ApplyAll folds actions into the Projection and records upTo as the sequence number
// of the last record it reflects.
func (p *Projection) ApplyAll(actions ledger.Actions, upTo ledger.MaxSequenceNumberUint) {
	for _, action := range actions {
		p.Apply(action)
	}

	if upTo > p.sequenceNumber {
		p.sequenceNumber = upTo
	}
}

// SequenceNumber is the ledger sequence number of the last record folded in with ApplyAll.
func (p *Projection) SequenceNumber() ledger.MaxSequenceNumberUint {
	return p.sequenceNumber
}

// Loaned returns the ids of all books with an open checkout, in ascending order.
func (p *Projection) Loaned() []int {
	return p.bookIDsWhere(func(b *bookState) bool { return len(b.loans) > 0 })
}

// Reserved returns the ids of all books with at least one open reservation, in ascending order.
func (p *Projection) Reserved() []int {
	return p.bookIDsWhere(func(b *bookState) bool { return len(b.reservations) > 0 })
}

// Open returns all open OUT and RESERVE records in ledger order.
func (p *Projection) Open() ledger.Actions {
	entries := make([]openEntry, 0)

	for _, book := range p.books {
		entries = append(entries, book.loans...)
		entries = append(entries, book.reservations...)
	}

	return inLedgerOrder(entries)
}

// OpenForBook returns the open OUT and RESERVE records of one book in ledger order.
func (p *Projection) OpenForBook(bookID int) ledger.Actions {
	book, ok := p.books[bookID]
	if !ok {
		return ledger.Actions{}
	}

	entries := make([]openEntry, 0, len(book.loans)+len(book.reservations))
	entries = append(entries, book.loans...)
	entries = append(entries, book.reservations...)

	return inLedgerOrder(entries)
}

// OpenLoan returns the most recent open OUT of one book, if there is any.
func (p *Projection) OpenLoan(bookID int) (ledger.Action, bool) {
	book, ok := p.books[bookID]
	if !ok || len(book.loans) == 0 {
		return ledger.Action{}, false
	}

	return book.loans[len(book.loans)-1].action, true
}

// OpenReservations returns the open RESERVE records of one book, oldest first.
func (p *Projection) OpenReservations(bookID int) ledger.Actions {
	book, ok := p.books[bookID]
	if !ok {
		return ledger.Actions{}
	}

	return inLedgerOrder(book.reservations)
}

// StatusOf returns OUT while the book is loaned, otherwise RESERVED while it has
// an open reservation, otherwise AVAILABLE.
func (p *Projection) StatusOf(bookID int) Status {
	book, ok := p.books[bookID]

	switch {
	case !ok:
		return StatusAvailable
	case len(book.loans) > 0:
		return StatusOut
	case len(book.reservations) > 0:
		return StatusReserved
	default:
		return StatusAvailable
	}
}

// LastActionFor returns the most recent record of one book, if there is any.
func (p *Projection) LastActionFor(bookID int) (ledger.Action, bool) {
	book, ok := p.books[bookID]
	if !ok {
		return ledger.Action{}, false
	}

	return book.last, true
}

// Clone returns an independent copy of the Projection.
func (p *Projection) Clone() *Projection {
	clone := &Projection{
		books:          make(map[int]*bookState, len(p.books)),
		position:       p.position,
		sequenceNumber: p.sequenceNumber,
	}

	for id, book := range p.books {
		clone.books[id] = &bookState{
			loans:        slices.Clone(book.loans),
			reservations: slices.Clone(book.reservations),
			last:         book.last,
		}
	}

	return clone
}

func (b *bookState) closeReservation(memberID string) []openEntry {
	if len(b.reservations) == 0 {
		return b.reservations
	}

	i := slices.IndexFunc(b.reservations, func(e openEntry) bool { return e.action.MemberID == memberID })
	if i < 0 {
		i = 0
	}

	return slices.Delete(b.reservations, i, i+1)
}

func (p *Projection) bookIDsWhere(predicate func(*bookState) bool) []int {
	ids := make([]int, 0)

	for id, book := range p.books {
		if predicate(book) {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	return ids
}

func inLedgerOrder(entries []openEntry) ledger.Actions {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b openEntry) int { return cmp.Compare(a.position, b.position) })

	actions := make(ledger.Actions, 0, len(sorted))
	for _, e := range sorted {
		actions = append(actions, e.action)
	}

	return actions
}
