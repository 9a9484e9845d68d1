package services

import "github.com/mrlokans/biblioteca/internal/entities"

// AuthorRegistry is the author collection as seen by the presentation
// layer: plain scalar inputs in, rows out.
type AuthorRegistry interface {
	Add(name, surname string, nationality, birthDate *string) (*entities.Author, error)
	List() ([]entities.Author, error)
	GetByID(id int64) (*entities.Author, error)
	Update(id int64, name, surname string, nationality, birthDate *string) error
	Delete(id int64) error
	ListForSelection() ([]entities.AuthorOption, error)
}

// BookCatalog is the book collection as seen by the presentation layer.
// Availability writes are absent on purpose: only the loan ledger drives
// them.
type BookCatalog interface {
	Add(isbn, title string, authorID *int64, year *int, publisher, genre *string) (*entities.Book, error)
	List() ([]entities.Book, error)
	GetByISBN(isbn string) (*entities.Book, error)
	Edit(isbn, title string, authorID *int64, year *int, publisher, genre *string) error
	Delete(isbn string) error
	Search(title, genre string) ([]entities.Book, error)
	ListAvailableForSelection() ([]entities.BookOption, error)
}

// LoanLedger records loan creation and return.
type LoanLedger interface {
	Create(isbn, borrower string) (*entities.Loan, error)
	Close(loanID int64) (*entities.Loan, error)
	ListOpen() ([]entities.Loan, error)
	ListAll() ([]entities.Loan, error)
	FindByBorrower(substring string) ([]entities.Loan, error)
	FindByTitle(substring string) ([]entities.Loan, error)
}
