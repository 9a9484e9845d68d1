// Package reports provides read-only circulation queries: most-borrowed
// books, overdue open loans and per-borrower history. Rendering is out of
// scope; the repository returns plain rows.
package reports

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import

	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/entities"
)

const dialect = "sqlite3"

// DefaultOverdueDays is the loan age after which an open loan counts as
// overdue.
const DefaultOverdueDays = 15

// BorrowedBook is one row of the most-borrowed ranking.
type BorrowedBook struct {
	ISBN       string `db:"isbn" json:"isbn"`
	Title      string `db:"title" json:"title"`
	AuthorName string `db:"author_name" json:"author_name"`
	TotalLoans int    `db:"total_loans" json:"total_loans"`
}

// OverdueLoan is one open loan older than the overdue threshold.
type OverdueLoan struct {
	ID          int64   `db:"id" json:"id"`
	ISBN        string  `db:"isbn" json:"isbn"`
	BookTitle   string  `db:"book_title" json:"book_title"`
	Borrower    string  `db:"borrower" json:"borrower"`
	DaysElapsed float64 `db:"days_elapsed" json:"days_elapsed"`
}

type Repository struct {
	gw *database.Gateway
}

func NewRepository(gw *database.Gateway) *Repository {
	return &Repository{gw: gw}
}

// MostBorrowed ranks books by their total loan count, descending, limited
// to at most limit rows. Books that were never loaned are omitted.
func (r *Repository) MostBorrowed(limit uint) ([]BorrowedBook, error) {
	stmt, args, err := goqu.Dialect(dialect).
		From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("authors").As("a"), goqu.On(goqu.I("b.author_id").Eq(goqu.I("a.id")))).
		LeftJoin(goqu.T("loans").As("l"), goqu.On(goqu.I("b.isbn").Eq(goqu.I("l.isbn")))).
		Select(
			goqu.I("b.isbn"), goqu.I("b.title"),
			goqu.L("COALESCE(a.name || ' ' || a.surname, ?)", entities.NoAuthorLabel).As("author_name"),
			goqu.COUNT(goqu.I("l.id")).As("total_loans"),
		).
		GroupBy(goqu.I("b.isbn"), goqu.I("b.title"), goqu.I("author_name")).
		Having(goqu.COUNT(goqu.I("l.id")).Gt(0)).
		Order(goqu.I("total_loans").Desc(), goqu.I("b.title").Asc()).
		Limit(limit).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var out []BorrowedBook
	if err := r.gw.Select(&out, stmt, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Overdue returns open loans older than days, most-delayed first.
func (r *Repository) Overdue(days int) ([]OverdueLoan, error) {
	if days <= 0 {
		days = DefaultOverdueDays
	}

	stmt, args, err := goqu.Dialect(dialect).
		From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("l.isbn").Eq(goqu.I("b.isbn")))).
		Select(
			goqu.I("l.id"), goqu.I("l.isbn"),
			goqu.I("b.title").As("book_title"), goqu.I("l.borrower"),
			goqu.L("julianday('now') - julianday(l.loan_date)").As("days_elapsed"),
		).
		Where(
			goqu.I("l.return_date").IsNull(),
			goqu.L("julianday('now') - julianday(l.loan_date)").Gt(days),
		).
		Order(goqu.I("days_elapsed").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var out []OverdueLoan
	if err := r.gw.Select(&out, stmt, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// BorrowerHistory returns the full loan history of one borrower by exact
// name, newest first.
func (r *Repository) BorrowerHistory(borrower string) ([]entities.Loan, error) {
	stmt, args, err := goqu.Dialect(dialect).
		From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("l.isbn").Eq(goqu.I("b.isbn")))).
		Select(
			goqu.I("l.id"), goqu.I("l.isbn"), goqu.I("l.borrower"),
			goqu.I("l.loan_date"), goqu.I("l.return_date"),
			goqu.I("b.title").As("book_title"),
		).
		Where(goqu.I("l.borrower").Eq(borrower)).
		Order(goqu.I("l.loan_date").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var out []entities.Loan
	if err := r.gw.Select(&out, stmt, args...); err != nil {
		return nil, err
	}
	return out, nil
}
