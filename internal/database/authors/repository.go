// Package authors provides the author registry: CRUD over authors plus the
// author picker used by the book catalog.
//
// Deleting an author is blocked while any book references it.
package authors

import (
	"strconv"
	"strings"
	"sync"

	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/entities"
	"github.com/mrlokans/biblioteca/internal/events"
)

const (
	insertAuthor = `INSERT INTO authors (name, surname, nationality, birthdate) VALUES (?, ?, ?, ?)`

	selectAllAuthors = `SELECT id, name, surname, nationality, birthdate FROM authors ORDER BY surname, name`

	selectAuthorByID = `SELECT id, name, surname, nationality, birthdate FROM authors WHERE id = ?`

	updateAuthor = `UPDATE authors SET name = ?, surname = ?, nationality = ?, birthdate = ? WHERE id = ?`

	deleteAuthor = `DELETE FROM authors WHERE id = ?`

	countBooksByAuthor = `SELECT COUNT(*) FROM books WHERE author_id = ?`

	selectAuthorsForSelection = `SELECT id, (name || ' ' || surname) AS label FROM authors ORDER BY surname, name`
)

// Repository is the sole writer of author rows.
type Repository struct {
	gw  *database.Gateway
	hub *events.Hub

	// The picker cache is shared between request goroutines; mu guards
	// both the memoized read and the invalidation.
	mu        sync.Mutex
	selection []entities.AuthorOption // nil when stale
}

func NewRepository(gw *database.Gateway, hub *events.Hub) *Repository {
	return &Repository{gw: gw, hub: hub}
}

// Add registers a new author and returns the row with its assigned id.
// Name and surname are required; nationality and birthDate may be nil.
func (r *Repository) Add(name, surname string, nationality, birthDate *string) (*entities.Author, error) {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	if name == "" {
		return nil, database.RequiredField("name")
	}
	if surname == "" {
		return nil, database.RequiredField("surname")
	}

	id, err := r.gw.Insert(insertAuthor, name, surname, nationality, birthDate)
	if err != nil {
		return nil, err
	}

	author := &entities.Author{
		ID:          id,
		Name:        name,
		Surname:     surname,
		Nationality: nationality,
		BirthDate:   birthDate,
	}

	r.invalidateSelection()
	r.hub.Publish(events.Event{Kind: events.EntityAdded, Entity: "author", Key: formatID(id)})
	return author, nil
}

// List returns all authors ordered by surname, then name.
func (r *Repository) List() ([]entities.Author, error) {
	var out []entities.Author
	if err := r.gw.Select(&out, selectAllAuthors); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one author, or database.ErrNotFound.
func (r *Repository) GetByID(id int64) (*entities.Author, error) {
	var a entities.Author
	if err := r.gw.Get(&a, selectAuthorByID, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update replaces all descriptive fields of an author.
func (r *Repository) Update(id int64, name, surname string, nationality, birthDate *string) error {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	if name == "" {
		return database.RequiredField("name")
	}
	if surname == "" {
		return database.RequiredField("surname")
	}

	n, err := r.gw.Exec(updateAuthor, name, surname, nationality, birthDate, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}

	r.invalidateSelection()
	return nil
}

// Delete removes an author. Guard: rejected with ErrAuthorHasBooks while
// any book row references the author.
func (r *Repository) Delete(id int64) error {
	dependents, err := r.gw.Count(countBooksByAuthor, id)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return database.ErrAuthorHasBooks
	}

	n, err := r.gw.Exec(deleteAuthor, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}

	r.invalidateSelection()
	r.hub.Publish(events.Event{Kind: events.EntityDeleted, Entity: "author", Key: formatID(id)})
	return nil
}

// ListForSelection returns the author picker entries, prefixed with the
// "no author" sentinel whose id is nil. The list is cached until the
// registry mutates its collection.
func (r *Repository) ListForSelection() ([]entities.AuthorOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selection != nil {
		return r.selection, nil
	}

	options := []entities.AuthorOption{{ID: nil, Label: entities.NoAuthorLabel}}
	var rows []entities.AuthorOption
	if err := r.gw.Select(&rows, selectAuthorsForSelection); err != nil {
		return nil, err
	}
	options = append(options, rows...)

	r.selection = options
	return options, nil
}

func (r *Repository) invalidateSelection() {
	r.mu.Lock()
	r.selection = nil
	r.mu.Unlock()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
