package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/biblioteca/internal/database/reports"
)

// DefaultMostBorrowedSize caps the ranking when the configured size is
// absent or non-positive.
const DefaultMostBorrowedSize = 10

type ReportsController struct {
	repo *reports.Repository

	overdueDays      int
	mostBorrowedSize int
}

func NewReportsController(repo *reports.Repository, overdueDays, mostBorrowedSize int) *ReportsController {
	// The size converts to uint at query time; a non-positive value would
	// wrap and disable the cap.
	if mostBorrowedSize <= 0 {
		mostBorrowedSize = DefaultMostBorrowedSize
	}
	return &ReportsController{
		repo:             repo,
		overdueDays:      overdueDays,
		mostBorrowedSize: mostBorrowedSize,
	}
}

// MostBorrowed ranks books by loan count
// GET /api/reports/most-borrowed
func (rc *ReportsController) MostBorrowed(c *gin.Context) {
	rows, err := rc.repo.MostBorrowed(uint(rc.mostBorrowedSize))
	if err != nil {
		respondInternalError(c, err, "most borrowed report")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Overdue lists open loans older than the configured threshold; ?days=
// overrides it
// GET /api/reports/overdue
func (rc *ReportsController) Overdue(c *gin.Context) {
	days := rc.overdueDays
	if q := c.Query("days"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "invalid days")
			return
		}
		days = parsed
	}

	rows, err := rc.repo.Overdue(days)
	if err != nil {
		respondInternalError(c, err, "overdue report")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// BorrowerHistory lists the loan history of one borrower by exact name
// GET /api/reports/borrowers/:name
func (rc *ReportsController) BorrowerHistory(c *gin.Context) {
	rows, err := rc.repo.BorrowerHistory(c.Param("name"))
	if err != nil {
		respondInternalError(c, err, "borrower history report")
		return
	}
	c.JSON(http.StatusOK, rows)
}
