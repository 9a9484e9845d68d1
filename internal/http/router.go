package http

import (
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the controllers into NewRouter. Using a config
// struct keeps the parameter count down and the wiring testable.
type RouterConfig struct {
	Authors *AuthorsController
	Books   *BooksController
	Loans   *LoansController
	Reports *ReportsController
	Health  *HealthController
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", cfg.Health.Status)

	api := router.Group("/api")
	{
		api.GET("/authors", cfg.Authors.ListAuthors)
		api.POST("/authors", cfg.Authors.CreateAuthor)
		api.GET("/authors/options", cfg.Authors.AuthorOptions)
		api.GET("/authors/:id", cfg.Authors.GetAuthor)
		api.PUT("/authors/:id", cfg.Authors.UpdateAuthor)
		api.DELETE("/authors/:id", cfg.Authors.DeleteAuthor)

		api.GET("/books", cfg.Books.ListBooks)
		api.POST("/books", cfg.Books.CreateBook)
		api.GET("/books/options", cfg.Books.BookOptions)
		api.GET("/books/:isbn", cfg.Books.GetBook)
		api.PUT("/books/:isbn", cfg.Books.UpdateBook)
		api.DELETE("/books/:isbn", cfg.Books.DeleteBook)

		api.GET("/loans", cfg.Loans.ListLoans)
		api.POST("/loans", cfg.Loans.CreateLoan)
		api.POST("/loans/:id/return", cfg.Loans.ReturnLoan)

		api.GET("/reports/most-borrowed", cfg.Reports.MostBorrowed)
		api.GET("/reports/overdue", cfg.Reports.Overdue)
		api.GET("/reports/borrowers/:name", cfg.Reports.BorrowerHistory)
	}

	return router
}
