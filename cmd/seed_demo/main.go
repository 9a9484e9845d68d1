// Command seed_demo populates an empty circulation database with a demo
// dataset: Latin American and Spanish classics, plus a handful of loans
// (some returned, some still open).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/biblioteca/internal/config"
	"github.com/mrlokans/biblioteca/internal/entrypoint"
)

type demoAuthor struct {
	name, surname, nationality, birthDate string
}

type demoBook struct {
	isbn, title string
	author      int // index into demoAuthors
	year        int
	publisher   string
	genre       string
}

type demoLoan struct {
	isbn     string
	borrower string
	returned bool
}

var demoAuthors = []demoAuthor{
	{"Gabriel", "García Márquez", "Colombian", "1927-03-06"},
	{"Isabel", "Allende", "Chilean", "1942-08-02"},
	{"Mario", "Vargas Llosa", "Peruvian", "1936-03-28"},
	{"Jorge Luis", "Borges", "Argentine", "1899-08-24"},
	{"Octavio", "Paz", "Mexican", "1914-03-31"},
	{"Pablo", "Neruda", "Chilean", "1904-07-12"},
	{"Julio", "Cortázar", "Argentine", "1914-08-26"},
	{"Carlos", "Fuentes", "Mexican", "1928-11-11"},
	{"Miguel", "de Cervantes", "Spanish", "1547-09-29"},
	{"Federico", "García Lorca", "Spanish", "1898-06-05"},
}

var demoBooks = []demoBook{
	{"978-84-376-0494-7", "Cien años de soledad", 0, 1967, "Sudamericana", "Realismo mágico"},
	{"978-84-204-8228-5", "La casa de los espíritus", 1, 1982, "Plaza & Janés", "Realismo mágico"},
	{"978-84-204-2962-1", "La ciudad y los perros", 2, 1963, "Seix Barral", "Novela"},
	{"978-84-376-0495-4", "El amor en los tiempos del cólera", 0, 1985, "Oveja Negra", "Romance"},
	{"978-84-204-8229-2", "De amor y de sombra", 1, 1984, "Plaza & Janés", "Novela"},
	{"978-84-204-2963-8", "Conversación en La Catedral", 2, 1969, "Seix Barral", "Novela"},
	{"978-84-376-0496-1", "Ficciones", 3, 1944, "Sur", "Cuentos"},
	{"978-84-376-0497-8", "El laberinto de la soledad", 4, 1950, "Cuadernos Americanos", "Ensayo"},
	{"978-84-376-0498-5", "Veinte poemas de amor y una canción desesperada", 5, 1924, "Nascimento", "Poesía"},
	{"978-84-376-0499-2", "Rayuela", 6, 1963, "Sudamericana", "Novela experimental"},
	{"978-84-376-0500-5", "La muerte de Artemio Cruz", 7, 1962, "Fondo de Cultura Económica", "Novela"},
	{"978-84-376-0501-2", "Don Quijote de La Mancha", 8, 1605, "Juan de la Cuesta", "Novela clásica"},
	{"978-84-376-0502-9", "Bodas de sangre", 9, 1933, "Cruz y Raya", "Teatro"},
	{"978-84-204-8230-8", "Paula", 1, 1994, "Plaza & Janés", "Autobiografía"},
	{"978-84-204-2964-5", "La tía Julia y el escribidor", 2, 1977, "Seix Barral", "Novela"},
}

var demoLoans = []demoLoan{
	{"978-84-376-0494-7", "Juan Pérez", true},
	{"978-84-204-8228-5", "María García", false},
	{"978-84-204-2962-1", "Carlos López", false},
	{"978-84-376-0495-4", "Ana Martínez", true},
	{"978-84-204-8229-2", "Luis Rodríguez", false},
}

func main() {
	cfg := config.NewConfig()

	registries, err := entrypoint.Build(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer registries.Gateway.Close()

	// Authors carry no unique constraint, so a second run would duplicate
	// them. Refuse to seed a non-empty database.
	stats, err := registries.Gateway.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if stats["authors"] > 0 || stats["books"] > 0 {
		fmt.Printf("Database already has data (%d authors, %d books), nothing to do\n",
			stats["authors"], stats["books"])
		return
	}

	authorIDs := make([]int64, 0, len(demoAuthors))
	for _, a := range demoAuthors {
		nationality, birthDate := a.nationality, a.birthDate
		author, err := registries.Authors.Add(a.name, a.surname, &nationality, &birthDate)
		if err != nil {
			log.Printf("skip author %s %s: %v", a.name, a.surname, err)
			authorIDs = append(authorIDs, 0)
			continue
		}
		authorIDs = append(authorIDs, author.ID)
	}

	for _, b := range demoBooks {
		year, publisher, genre := b.year, b.publisher, b.genre
		var authorID *int64
		if id := authorIDs[b.author]; id != 0 {
			authorID = &id
		}
		if _, err := registries.Books.Add(b.isbn, b.title, authorID, &year, &publisher, &genre); err != nil {
			log.Printf("skip book %s: %v", b.isbn, err)
		}
	}

	for _, l := range demoLoans {
		loan, err := registries.Loans.Create(l.isbn, l.borrower)
		if err != nil {
			log.Printf("skip loan of %s to %s: %v", l.isbn, l.borrower, err)
			continue
		}
		if l.returned {
			if _, err := registries.Loans.Close(loan.ID); err != nil {
				log.Printf("could not return loan %d: %v", loan.ID, err)
			}
		}
	}

	stats, err = registries.Gateway.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Demo data ready: %d authors, %d books, %d loans\n",
		stats["authors"], stats["books"], stats["loans"])
}
