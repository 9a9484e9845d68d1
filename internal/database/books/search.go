package books

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	"github.com/mrlokans/biblioteca/internal/entities"
)

const dialect = "sqlite3"

func searchDataset() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("authors").As("a"), goqu.On(goqu.I("b.author_id").Eq(goqu.I("a.id")))).
		Select(
			goqu.I("b.isbn"), goqu.I("b.title"), goqu.I("b.author_id"),
			goqu.I("b.year"), goqu.I("b.publisher"), goqu.I("b.genre"), goqu.I("b.state"),
			goqu.L("COALESCE(a.name || ' ' || a.surname, ?)", entities.NoAuthorLabel).As("author_name"),
		).
		Order(goqu.I("b.title").Asc())
}

func (r *Repository) searchBy(column string, substring string) ([]entities.Book, error) {
	pattern := "%" + strings.ToLower(substring) + "%"
	stmt, args, err := searchDataset().
		Where(goqu.L("LOWER("+column+")").Like(pattern)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var out []entities.Book
	if err := r.gw.Select(&out, stmt, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByTitle returns books whose title contains the substring,
// case-insensitively, ordered by title.
func (r *Repository) FindByTitle(substring string) ([]entities.Book, error) {
	return r.searchBy("b.title", substring)
}

// FindByGenre returns books whose genre contains the substring,
// case-insensitively, ordered by title.
func (r *Repository) FindByGenre(substring string) ([]entities.Book, error) {
	return r.searchBy("b.genre", substring)
}

// Search unions the results of the given criteria, dropping duplicates by
// ISBN. Empty criteria are skipped; two empty criteria return nothing.
func (r *Repository) Search(title, genre string) ([]entities.Book, error) {
	var merged []entities.Book
	seen := make(map[string]bool)

	appendMatches := func(matches []entities.Book) {
		for _, b := range matches {
			if seen[b.ISBN] {
				continue
			}
			seen[b.ISBN] = true
			merged = append(merged, b)
		}
	}

	if strings.TrimSpace(title) != "" {
		matches, err := r.FindByTitle(title)
		if err != nil {
			return nil, err
		}
		appendMatches(matches)
	}
	if strings.TrimSpace(genre) != "" {
		matches, err := r.FindByGenre(genre)
		if err != nil {
			return nil, err
		}
		appendMatches(matches)
	}

	return merged, nil
}
