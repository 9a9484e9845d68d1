// Package loans provides the loan ledger: it records loan creation and
// return, and it is the only component that drives a book's availability
// transitions.
//
// State machine per book: NoLoan (Available) -> Open (Loaned) -> Closed
// (book back to Available, a new loan may start). At most one open loan
// exists per ISBN; the flip to Loaned is a single conditional write, so
// the invariant holds without a storage-level constraint.
package loans

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/entities"
	"github.com/mrlokans/biblioteca/internal/events"
)

const (
	insertLoan = `INSERT INTO loans (isbn, borrower, loan_date, return_date) VALUES (?, ?, ?, NULL)`

	selectLoanByID = `
SELECT l.id, l.isbn, l.borrower, l.loan_date, l.return_date,
       COALESCE(b.title, '') AS book_title
FROM loans l
LEFT JOIN books b ON l.isbn = b.isbn
WHERE l.id = ?`

	// Closing is conditional on the loan still being open, so a second
	// close affects zero rows and never overwrites the return date.
	closeLoan = `UPDATE loans SET return_date = ? WHERE id = ? AND return_date IS NULL`

	reopenLoan = `UPDATE loans SET return_date = NULL WHERE id = ?`

	selectOpenLoans = `
SELECT l.id, l.isbn, l.borrower, l.loan_date, l.return_date,
       COALESCE(b.title, '') AS book_title
FROM loans l
LEFT JOIN books b ON l.isbn = b.isbn
WHERE l.return_date IS NULL
ORDER BY l.loan_date DESC`

	selectAllLoans = `
SELECT l.id, l.isbn, l.borrower, l.loan_date, l.return_date,
       COALESCE(b.title, '') AS book_title
FROM loans l
LEFT JOIN books b ON l.isbn = b.isbn
ORDER BY l.loan_date DESC`
)

// BookCatalog is the slice of the book catalog the ledger drives.
type BookCatalog interface {
	// MarkLoaned flips an Available book to Loaned in one conditional
	// write; database.ErrBookNotAvailable when the book is missing or
	// already Loaned.
	MarkLoaned(isbn string) error
	SetAvailability(isbn string, state entities.AvailabilityState) error
}

// Repository is the sole writer of loan rows. Loans are never deleted;
// each is mutated exactly once, at return.
type Repository struct {
	gw      *database.Gateway
	hub     *events.Hub
	catalog BookCatalog

	now func() time.Time
}

func NewRepository(gw *database.Gateway, hub *events.Hub, catalog BookCatalog) *Repository {
	return &Repository{gw: gw, hub: hub, catalog: catalog, now: time.Now}
}

// Create opens a loan for an Available book. The availability flip runs
// first as a conditional write; when the loan insert itself fails the flip
// is compensated so the book does not stay Loaned without an open loan.
func (r *Repository) Create(isbn, borrower string) (*entities.Loan, error) {
	isbn = strings.TrimSpace(isbn)
	borrower = strings.TrimSpace(borrower)
	if isbn == "" {
		return nil, database.RequiredField("isbn")
	}
	if borrower == "" {
		return nil, database.RequiredField("borrower")
	}

	if err := r.catalog.MarkLoaned(isbn); err != nil {
		return nil, err
	}

	// Second precision keeps the stored text usable by SQLite's own date
	// functions (the overdue report runs julianday over it).
	id, err := r.gw.Insert(insertLoan, isbn, borrower, r.now().Truncate(time.Second))
	if err != nil {
		if cerr := r.catalog.SetAvailability(isbn, entities.StateAvailable); cerr != nil {
			log.Printf("could not compensate availability of %s after failed loan insert: %v", isbn, cerr)
		}
		return nil, err
	}

	loan, err := r.getByID(id)
	if err != nil {
		return nil, err
	}

	r.hub.Publish(events.Event{Kind: events.LoanOpened, Entity: "loan", Key: strconv.FormatInt(id, 10)})
	return loan, nil
}

// Close registers the return of a loan: the return date is set exactly
// once, and the book flips back to Available. A loan that is already
// closed (or unknown) is rejected with ErrLoanNotOpen and no state flips.
func (r *Repository) Close(loanID int64) (*entities.Loan, error) {
	returnedAt := r.now().Truncate(time.Second)

	n, err := r.gw.Exec(closeLoan, returnedAt, loanID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, database.ErrLoanNotOpen
	}

	// Re-read to confirm the write took effect before touching the book.
	// A failure from here on reopens the loan so it does not end Closed
	// while the book stays Loaned.
	loan, err := r.getByID(loanID)
	if err != nil {
		r.reopen(loanID)
		return nil, err
	}
	if loan.ReturnDate == nil {
		return nil, database.ErrLoanNotOpen
	}

	if err := r.catalog.SetAvailability(loan.ISBN, entities.StateAvailable); err != nil {
		r.reopen(loanID)
		return nil, err
	}

	r.hub.Publish(events.Event{Kind: events.LoanClosed, Entity: "loan", Key: strconv.FormatInt(loanID, 10)})
	return loan, nil
}

// ListOpen returns the open loans joined with the book title, newest
// first.
func (r *Repository) ListOpen() ([]entities.Loan, error) {
	var out []entities.Loan
	if err := r.gw.Select(&out, selectOpenLoans); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns the full loan history, newest first.
func (r *Repository) ListAll() ([]entities.Loan, error) {
	var out []entities.Loan
	if err := r.gw.Select(&out, selectAllLoans); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) reopen(loanID int64) {
	if _, err := r.gw.Exec(reopenLoan, loanID); err != nil {
		log.Printf("could not reopen loan %d after failed return: %v", loanID, err)
	}
}

func (r *Repository) getByID(id int64) (*entities.Loan, error) {
	var l entities.Loan
	if err := r.gw.Get(&l, selectLoanByID, id); err != nil {
		return nil, err
	}
	return &l, nil
}
