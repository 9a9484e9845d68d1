// Package books provides the book catalog: CRUD over books, the
// availability state owned by each book, and the picker of available books
// used by the loan ledger.
//
// Deleting a book is blocked while an open loan references its ISBN. The
// availability transitions themselves are driven by the loan ledger; the
// catalog only exposes the writes.
package books

import (
	"strings"
	"sync"

	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/entities"
	"github.com/mrlokans/biblioteca/internal/events"
)

const (
	insertBook = `INSERT INTO books (isbn, title, author_id, year, publisher, genre, state) VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectAllBooks = `
SELECT b.isbn, b.title, b.author_id, b.year, b.publisher, b.genre, b.state,
       COALESCE(a.name || ' ' || a.surname, ?) AS author_name
FROM books b
LEFT JOIN authors a ON b.author_id = a.id
ORDER BY b.title`

	selectBookByISBN = `
SELECT b.isbn, b.title, b.author_id, b.year, b.publisher, b.genre, b.state,
       COALESCE(a.name || ' ' || a.surname, ?) AS author_name
FROM books b
LEFT JOIN authors a ON b.author_id = a.id
WHERE b.isbn = ?`

	// The ISBN is the immutable lookup key and the state is owned by the
	// loan transitions, so edits replace only the descriptive fields.
	updateBookInfo = `UPDATE books SET title = ?, author_id = ?, year = ?, publisher = ?, genre = ? WHERE isbn = ?`

	deleteBook = `DELETE FROM books WHERE isbn = ?`

	countOpenLoansByISBN = `SELECT COUNT(*) FROM loans WHERE isbn = ? AND return_date IS NULL`

	// Guarded flip: affects zero rows unless the book exists and is
	// currently Available, which makes the loan-side check-then-act a
	// single conditional write.
	markBookLoaned = `UPDATE books SET state = ? WHERE isbn = ? AND state = ?`

	setBookState = `UPDATE books SET state = ? WHERE isbn = ?`

	selectAvailableForSelection = `SELECT isbn, title AS label FROM books WHERE state = ? ORDER BY title`
)

// Repository is the sole writer of book rows' descriptive fields.
type Repository struct {
	gw  *database.Gateway
	hub *events.Hub

	// The picker cache is shared between request goroutines; mu guards
	// both the memoized read and the invalidation.
	mu        sync.Mutex
	selection []entities.BookOption // available-books picker, nil when stale
}

func NewRepository(gw *database.Gateway, hub *events.Hub) *Repository {
	return &Repository{gw: gw, hub: hub}
}

// Add catalogs a new book with state Available. ISBN and title are
// required; the ISBN is caller-supplied and not validated for checksum
// correctness. The author reference, if present, is stored as given.
func (r *Repository) Add(isbn, title string, authorID *int64, year *int, publisher, genre *string) (*entities.Book, error) {
	isbn = strings.TrimSpace(isbn)
	title = strings.TrimSpace(title)
	if isbn == "" {
		return nil, database.RequiredField("isbn")
	}
	if title == "" {
		return nil, database.RequiredField("title")
	}

	if _, err := r.gw.Exec(insertBook, isbn, title, authorID, year, publisher, genre, entities.StateAvailable); err != nil {
		return nil, err
	}

	r.invalidateSelection()
	r.hub.Publish(events.Event{Kind: events.EntityAdded, Entity: "book", Key: isbn})

	return r.GetByISBN(isbn)
}

// List returns all books joined with the author display name, ordered by
// title.
func (r *Repository) List() ([]entities.Book, error) {
	var out []entities.Book
	if err := r.gw.Select(&out, selectAllBooks, entities.NoAuthorLabel); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByISBN returns one book with its author display name, or
// database.ErrNotFound.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var b entities.Book
	if err := r.gw.Get(&b, selectBookByISBN, entities.NoAuthorLabel, isbn); err != nil {
		return nil, err
	}
	return &b, nil
}

// Edit replaces the descriptive fields of an existing book. The ISBN is
// the lookup key and never changes; availability is not touched.
func (r *Repository) Edit(isbn, title string, authorID *int64, year *int, publisher, genre *string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return database.RequiredField("title")
	}

	n, err := r.gw.Exec(updateBookInfo, title, authorID, year, publisher, genre, isbn)
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}

	r.invalidateSelection()
	return nil
}

// Delete removes a book. Guard: rejected with ErrBookHasOpenLoan while an
// open loan references the ISBN; closed loans do not block deletion.
func (r *Repository) Delete(isbn string) error {
	open, err := r.gw.Count(countOpenLoansByISBN, isbn)
	if err != nil {
		return err
	}
	if open > 0 {
		return database.ErrBookHasOpenLoan
	}

	n, err := r.gw.Exec(deleteBook, isbn)
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}

	r.invalidateSelection()
	r.hub.Publish(events.Event{Kind: events.EntityDeleted, Entity: "book", Key: isbn})
	return nil
}

// MarkLoaned flips an Available book to Loaned in one conditional write.
// Zero affected rows means the book is missing or already Loaned, reported
// as ErrBookNotAvailable. Invoked only by the loan ledger.
func (r *Repository) MarkLoaned(isbn string) error {
	n, err := r.gw.Exec(markBookLoaned, entities.StateLoaned, isbn, entities.StateAvailable)
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrBookNotAvailable
	}
	r.invalidateSelection()
	return nil
}

// SetAvailability writes the availability state. Invoked only by the loan
// ledger; never exposed as a direct user action.
func (r *Repository) SetAvailability(isbn string, state entities.AvailabilityState) error {
	n, err := r.gw.Exec(setBookState, state, isbn)
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}
	r.invalidateSelection()
	return nil
}

// ListAvailableForSelection returns the picker entries for books that can
// be loaned right now. The list is cached until the catalog mutates or the
// hub reports a loan transition.
func (r *Repository) ListAvailableForSelection() ([]entities.BookOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selection != nil {
		return r.selection, nil
	}

	var options []entities.BookOption
	if err := r.gw.Select(&options, selectAvailableForSelection, entities.StateAvailable); err != nil {
		return nil, err
	}

	r.selection = options
	return options, nil
}

// Refresh drops the cached picker. Subscribed on the hub for loan events
// so the available-books list tracks the ledger's transitions.
func (r *Repository) Refresh(events.Event) error {
	r.invalidateSelection()
	return nil
}

func (r *Repository) invalidateSelection() {
	r.mu.Lock()
	r.selection = nil
	r.mu.Unlock()
}
