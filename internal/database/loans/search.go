package loans

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	"github.com/mrlokans/biblioteca/internal/entities"
)

const dialect = "sqlite3"

func searchDataset() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(goqu.T("loans").As("l")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("l.isbn").Eq(goqu.I("b.isbn")))).
		Select(
			goqu.I("l.id"), goqu.I("l.isbn"), goqu.I("l.borrower"),
			goqu.I("l.loan_date"), goqu.I("l.return_date"),
			goqu.L("COALESCE(b.title, '')").As("book_title"),
		).
		Order(goqu.I("l.loan_date").Desc())
}

func (r *Repository) searchBy(column string, substring string) ([]entities.Loan, error) {
	pattern := "%" + strings.ToLower(substring) + "%"
	stmt, args, err := searchDataset().
		Where(goqu.L("LOWER(" + column + ")").Like(pattern)).
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

// FindByBorrower filters the joined loan view by borrower name substring,
// case-insensitively, newest first.
func (r *Repository) FindByBorrower(substring string) ([]entities.Loan, error) {
	return r.searchBy("l.borrower", substring)
}

// FindByTitle filters the joined loan view by book title substring,
// case-insensitively, newest first.
func (r *Repository) FindByTitle(substring string) ([]entities.Loan, error) {
	return r.searchBy("b.title", substring)
}
