package entities

import "time"

// AvailabilityState is the circulation state of a book. A book is Loaned
// exactly while an open loan references its ISBN.
type AvailabilityState string

const (
	StateAvailable AvailabilityState = "Available"
	StateLoaned    AvailabilityState = "Loaned"
)

// LoanStatus is derived from the return date, never stored on its own.
type LoanStatus string

const (
	LoanOpen     LoanStatus = "Open"
	LoanReturned LoanStatus = "Returned"
)

// NoAuthorLabel is the display label used wherever a book has no author
// reference, in list joins and in the author selection sentinel.
const NoAuthorLabel = "No author"

type Author struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Surname     string  `db:"surname" json:"surname"`
	Nationality *string `db:"nationality" json:"nationality,omitempty"`
	BirthDate   *string `db:"birthdate" json:"birth_date,omitempty"` // ISO date, e.g. "1927-03-06"
}

// DisplayName is the label shown in selection lists and book joins.
func (a Author) DisplayName() string {
	return a.Name + " " + a.Surname
}

type Book struct {
	ISBN      string            `db:"isbn" json:"isbn"`
	Title     string            `db:"title" json:"title"`
	AuthorID  *int64            `db:"author_id" json:"author_id,omitempty"`
	Year      *int              `db:"year" json:"year,omitempty"`
	Publisher *string           `db:"publisher" json:"publisher,omitempty"`
	Genre     *string           `db:"genre" json:"genre,omitempty"`
	State     AvailabilityState `db:"state" json:"state"`

	// AuthorName is populated by list/search joins; NoAuthorLabel when the
	// book has no author reference.
	AuthorName string `db:"author_name" json:"author_name,omitempty"`
}

type Loan struct {
	ID         int64      `db:"id" json:"id"`
	ISBN       string     `db:"isbn" json:"isbn"`
	Borrower   string     `db:"borrower" json:"borrower"`
	LoanDate   time.Time  `db:"loan_date" json:"loan_date"`
	ReturnDate *time.Time `db:"return_date" json:"return_date,omitempty"`

	// BookTitle is populated by the ledger's joined views.
	BookTitle string `db:"book_title" json:"book_title,omitempty"`
}

// Status reports Open while no return date is set, Returned afterwards.
func (l Loan) Status() LoanStatus {
	if l.ReturnDate == nil {
		return LoanOpen
	}
	return LoanReturned
}

// AuthorOption is one entry of the author picker. The sentinel "no author"
// entry carries a nil ID.
type AuthorOption struct {
	ID    *int64 `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
}

// BookOption is one entry of the book picker used when opening a loan.
type BookOption struct {
	ISBN  string `db:"isbn" json:"isbn"`
	Label string `db:"label" json:"label"`
}
