package loans

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/database/authors"
	"github.com/mrlokans/biblioteca/internal/database/books"
	"github.com/mrlokans/biblioteca/internal/entities"
	"github.com/mrlokans/biblioteca/internal/events"
)

type fixture struct {
	gw      *database.Gateway
	hub     *events.Hub
	authors *authors.Repository
	books   *books.Repository
	loans   *Repository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	gw, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })

	hub := events.NewHub()
	authorsRepo := authors.NewRepository(gw, hub)
	booksRepo := books.NewRepository(gw, hub)
	loansRepo := NewRepository(gw, hub, booksRepo)
	hub.Subscribe(events.LoanOpened, booksRepo.Refresh)
	hub.Subscribe(events.LoanClosed, booksRepo.Refresh)

	return &fixture{gw: gw, hub: hub, authors: authorsRepo, books: booksRepo, loans: loansRepo}
}

func (f *fixture) addBook(t *testing.T, isbn, title string) {
	t.Helper()
	_, err := f.books.Add(isbn, title, nil, nil, nil, nil)
	require.NoError(t, err)
}

func (f *fixture) bookState(t *testing.T, isbn string) entities.AvailabilityState {
	t.Helper()
	book, err := f.books.GetByISBN(isbn)
	require.NoError(t, err)
	return book.State
}

func TestRepository_Create(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Cien años de soledad")

	loan, err := f.loans.Create("978-1", "Juan")

	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
	assert.Equal(t, "978-1", loan.ISBN)
	assert.Equal(t, "Cien años de soledad", loan.BookTitle)
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, entities.LoanOpen, loan.Status())
	assert.Equal(t, entities.StateLoaned, f.bookState(t, "978-1"))
}

func TestRepository_Create_Validation(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Ficciones")

	_, err := f.loans.Create("", "Juan")
	assert.True(t, database.IsValidationError(err))

	_, err = f.loans.Create("978-1", "  ")
	assert.True(t, database.IsValidationError(err))

	// Nothing written, book untouched.
	all, err := f.loans.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, entities.StateAvailable, f.bookState(t, "978-1"))
}

func TestRepository_Create_RejectedWhenBookLoaned(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Cien años de soledad")

	_, err := f.loans.Create("978-1", "Juan")
	require.NoError(t, err)

	_, err = f.loans.Create("978-1", "Ana")
	assert.ErrorIs(t, err, database.ErrBookNotAvailable)

	// No second loan row, book still Loaned.
	open, err := f.loans.ListOpen()
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Juan", open[0].Borrower)
	assert.Equal(t, entities.StateLoaned, f.bookState(t, "978-1"))
}

func TestRepository_Create_UnknownBook(t *testing.T) {
	f := setupFixture(t)

	_, err := f.loans.Create("missing", "Juan")
	assert.ErrorIs(t, err, database.ErrBookNotAvailable)
}

func TestRepository_Close_RoundTripRestoresAvailability(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Rayuela")

	loan, err := f.loans.Create("978-1", "Juan")
	require.NoError(t, err)
	assert.Equal(t, entities.StateLoaned, f.bookState(t, "978-1"))

	closed, err := f.loans.Close(loan.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ReturnDate)
	assert.Equal(t, entities.LoanReturned, closed.Status())
	assert.Equal(t, entities.StateAvailable, f.bookState(t, "978-1"))

	// The book can be loaned again after the round trip.
	_, err = f.loans.Create("978-1", "Ana")
	require.NoError(t, err)
}

func TestRepository_Close_TwiceFails(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Paula")

	loan, err := f.loans.Create("978-1", "Juan")
	require.NoError(t, err)

	closed, err := f.loans.Close(loan.ID)
	require.NoError(t, err)
	firstReturn := *closed.ReturnDate

	// Make the book Loaned again through a fresh loan so a buggy second
	// close would visibly flip it.
	second, err := f.loans.Create("978-1", "Ana")
	require.NoError(t, err)

	_, err = f.loans.Close(loan.ID)
	assert.ErrorIs(t, err, database.ErrLoanNotOpen)

	// Return date not overwritten, availability untouched.
	all, err := f.loans.ListAll()
	require.NoError(t, err)
	for _, l := range all {
		if l.ID == loan.ID {
			require.NotNil(t, l.ReturnDate)
			assert.True(t, l.ReturnDate.Equal(firstReturn))
		}
	}
	assert.Equal(t, entities.StateLoaned, f.bookState(t, "978-1"))

	_, err = f.loans.Close(second.ID)
	require.NoError(t, err)
}

// failingCatalog wraps the real catalog and fails availability writes on
// demand.
type failingCatalog struct {
	inner   *books.Repository
	failSet bool
}

func (c *failingCatalog) MarkLoaned(isbn string) error { return c.inner.MarkLoaned(isbn) }

func (c *failingCatalog) SetAvailability(isbn string, state entities.AvailabilityState) error {
	if c.failSet {
		return errors.New("storage unavailable")
	}
	return c.inner.SetAvailability(isbn, state)
}

func TestRepository_Close_ReopensLoanWhenAvailabilityWriteFails(t *testing.T) {
	f := setupFixture(t)
	catalog := &failingCatalog{inner: f.books}
	ledger := NewRepository(f.gw, f.hub, catalog)
	f.addBook(t, "978-1", "Ficciones")

	loan, err := ledger.Create("978-1", "Juan")
	require.NoError(t, err)

	catalog.failSet = true
	_, err = ledger.Close(loan.ID)
	require.Error(t, err)

	// The close is rolled back: loan open again, book still Loaned, so the
	// return can be retried instead of leaving a closed loan on a loaned
	// book.
	open, err := ledger.ListOpen()
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Nil(t, open[0].ReturnDate)
	assert.Equal(t, entities.StateLoaned, f.bookState(t, "978-1"))

	catalog.failSet = false
	closed, err := ledger.Close(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanReturned, closed.Status())
	assert.Equal(t, entities.StateAvailable, f.bookState(t, "978-1"))
}

func TestRepository_Close_UnknownLoan(t *testing.T) {
	f := setupFixture(t)

	_, err := f.loans.Close(42)
	assert.ErrorIs(t, err, database.ErrLoanNotOpen)
}

func TestRepository_ListOpenAndListAll(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Ficciones")
	f.addBook(t, "978-2", "Bodas de sangre")

	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	f.loans.now = func() time.Time { return base }
	first, err := f.loans.Create("978-1", "Juan Pérez")
	require.NoError(t, err)

	f.loans.now = func() time.Time { return base.Add(48 * time.Hour) }
	_, err = f.loans.Close(first.ID)
	require.NoError(t, err)

	f.loans.now = func() time.Time { return base.Add(72 * time.Hour) }
	_, err = f.loans.Create("978-2", "María García")
	require.NoError(t, err)

	open, err := f.loans.ListOpen()
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "María García", open[0].Borrower)
	assert.Equal(t, "Bodas de sangre", open[0].BookTitle)

	all, err := f.loans.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, "María García", all[0].Borrower)
	assert.Equal(t, "Juan Pérez", all[1].Borrower)
}

func TestRepository_FindByBorrowerAndTitle(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Cien años de soledad")
	f.addBook(t, "978-2", "La ciudad y los perros")

	_, err := f.loans.Create("978-1", "Juan Pérez")
	require.NoError(t, err)
	_, err = f.loans.Create("978-2", "María García")
	require.NoError(t, err)

	byBorrower, err := f.loans.FindByBorrower("juan")
	require.NoError(t, err)
	require.Len(t, byBorrower, 1)
	assert.Equal(t, "978-1", byBorrower[0].ISBN)

	byTitle, err := f.loans.FindByTitle("CIUDAD")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "María García", byTitle[0].Borrower)

	none, err := f.loans.FindByBorrower("zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// Full circulation walk-through: loan and return drive the availability
// round trip, and author deletion stays blocked by the book reference
// itself, independent of loan state.
func TestCirculationScenario(t *testing.T) {
	f := setupFixture(t)

	author, err := f.authors.Add("Gabriel", "García Márquez", nil, nil)
	require.NoError(t, err)

	_, err = f.books.Add("978-1", "Cien años de soledad", &author.ID, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAvailable, f.bookState(t, "978-1"))

	loan, err := f.loans.Create("978-1", "Juan")
	require.NoError(t, err)
	assert.Equal(t, entities.StateLoaned, f.bookState(t, "978-1"))
	assert.Equal(t, entities.LoanOpen, loan.Status())

	// Second borrower rejected while the loan is open.
	_, err = f.loans.Create("978-1", "Ana")
	assert.ErrorIs(t, err, database.ErrBookNotAvailable)
	open, err := f.loans.ListOpen()
	require.NoError(t, err)
	assert.Len(t, open, 1)

	closed, err := f.loans.Close(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanReturned, closed.Status())
	assert.Equal(t, entities.StateAvailable, f.bookState(t, "978-1"))

	// The returned loan does not unblock the author: the book row still
	// references it.
	err = f.authors.Delete(author.ID)
	assert.ErrorIs(t, err, database.ErrAuthorHasBooks)

	// Only removing the book lifts the guard (its loan is closed, so the
	// book itself may go).
	require.NoError(t, f.books.Delete("978-1"))
	require.NoError(t, f.authors.Delete(author.ID))
}

// Loaned iff an open loan exists, across several books and transitions.
func TestAvailabilityMatchesOpenLoans(t *testing.T) {
	f := setupFixture(t)
	isbns := []string{"978-1", "978-2", "978-3"}
	titles := []string{"Ficciones", "Rayuela", "Paula"}
	for i, isbn := range isbns {
		f.addBook(t, isbn, titles[i])
	}

	first, err := f.loans.Create("978-1", "Juan")
	require.NoError(t, err)
	_, err = f.loans.Create("978-3", "Ana")
	require.NoError(t, err)
	_, err = f.loans.Close(first.ID)
	require.NoError(t, err)

	for _, isbn := range isbns {
		openCount, err := f.gw.Count(`SELECT COUNT(*) FROM loans WHERE isbn = ? AND return_date IS NULL`, isbn)
		require.NoError(t, err)

		state := f.bookState(t, isbn)
		if openCount > 0 {
			assert.Equal(t, entities.StateLoaned, state, "isbn %s", isbn)
		} else {
			assert.Equal(t, entities.StateAvailable, state, "isbn %s", isbn)
		}
	}
}

func TestRepository_Create_RefreshesBookPicker(t *testing.T) {
	f := setupFixture(t)
	f.addBook(t, "978-1", "Ficciones")
	f.addBook(t, "978-2", "Rayuela")

	options, err := f.books.ListAvailableForSelection()
	require.NoError(t, err)
	require.Len(t, options, 2)

	loan, err := f.loans.Create("978-1", "Juan")
	require.NoError(t, err)

	options, err = f.books.ListAvailableForSelection()
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Rayuela", options[0].Label)

	_, err = f.loans.Close(loan.ID)
	require.NoError(t, err)

	options, err = f.books.ListAvailableForSelection()
	require.NoError(t, err)
	assert.Len(t, options, 2)
}
