package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/biblioteca/internal/services"
)

type LoansController struct {
	ledger services.LoanLedger
}

func NewLoansController(ledger services.LoanLedger) *LoansController {
	return &LoansController{ledger: ledger}
}

type loanRequest struct {
	ISBN     string `json:"isbn" binding:"required"`
	Borrower string `json:"borrower" binding:"required"`
}

// ListLoans returns the loan history, newest first. ?status=open narrows
// to open loans; ?borrower= and ?title= are substring filters.
// GET /api/loans
func (lc *LoansController) ListLoans(c *gin.Context) {
	var (
		loans any
		err   error
	)

	switch {
	case c.Query("borrower") != "":
		loans, err = lc.ledger.FindByBorrower(c.Query("borrower"))
	case c.Query("title") != "":
		loans, err = lc.ledger.FindByTitle(c.Query("title"))
	case c.Query("status") == "open":
		loans, err = lc.ledger.ListOpen()
	default:
		loans, err = lc.ledger.ListAll()
	}

	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	c.JSON(http.StatusOK, loans)
}

// CreateLoan opens a loan against an available book
// POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req loanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "isbn and borrower are required")
		return
	}

	loan, err := lc.ledger.Create(req.ISBN, req.Borrower)
	if err != nil {
		respondOperationError(c, err, "loan")
		return
	}
	respondCreated(c, loan)
}

// ReturnLoan registers the return of an open loan
// POST /api/loans/:id/return
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := lc.ledger.Close(id)
	if err != nil {
		respondOperationError(c, err, "loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}
