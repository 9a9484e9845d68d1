package database

// Schema creation is idempotent; Open runs these on every start. Foreign
// keys document intent; the delete guards live in the repositories.
const (
	createTableAuthors = `
CREATE TABLE IF NOT EXISTS authors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    surname TEXT NOT NULL,
    nationality TEXT,
    birthdate DATE
)`

	createTableBooks = `
CREATE TABLE IF NOT EXISTS books (
    isbn TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author_id INTEGER,
    year INTEGER,
    publisher TEXT,
    genre TEXT,
    state TEXT NOT NULL DEFAULT 'Available',
    FOREIGN KEY (author_id) REFERENCES authors(id)
)`

	createTableLoans = `
CREATE TABLE IF NOT EXISTS loans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    isbn TEXT NOT NULL,
    borrower TEXT NOT NULL,
    loan_date TIMESTAMP NOT NULL,
    return_date TIMESTAMP,
    FOREIGN KEY (isbn) REFERENCES books(isbn)
)`
)

var schemaStatements = []string{
	createTableAuthors,
	createTableBooks,
	createTableLoans,
}
