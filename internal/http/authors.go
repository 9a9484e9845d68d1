package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/biblioteca/internal/services"
)

type AuthorsController struct {
	registry services.AuthorRegistry
}

func NewAuthorsController(registry services.AuthorRegistry) *AuthorsController {
	return &AuthorsController{registry: registry}
}

type authorRequest struct {
	Name        string  `json:"name" binding:"required"`
	Surname     string  `json:"surname" binding:"required"`
	Nationality *string `json:"nationality"`
	BirthDate   *string `json:"birth_date"`
}

// ListAuthors returns all authors ordered by surname, name
// GET /api/authors
func (ac *AuthorsController) ListAuthors(c *gin.Context) {
	authors, err := ac.registry.List()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, authors)
}

// CreateAuthor registers a new author
// POST /api/authors
func (ac *AuthorsController) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and surname are required")
		return
	}

	author, err := ac.registry.Add(req.Name, req.Surname, req.Nationality, req.BirthDate)
	if err != nil {
		respondOperationError(c, err, "author")
		return
	}
	respondCreated(c, author)
}

// GetAuthor returns one author
// GET /api/authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.registry.GetByID(id)
	if err != nil {
		respondOperationError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// UpdateAuthor replaces an author's fields
// PUT /api/authors/:id
func (ac *AuthorsController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and surname are required")
		return
	}

	if err := ac.registry.Update(id, req.Name, req.Surname, req.Nationality, req.BirthDate); err != nil {
		respondOperationError(c, err, "author")
		return
	}
	respondSuccess(c, "author updated")
}

// DeleteAuthor removes an author unless books still reference it
// DELETE /api/authors/:id
func (ac *AuthorsController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.registry.Delete(id); err != nil {
		respondOperationError(c, err, "author")
		return
	}
	respondSuccess(c, "author deleted")
}

// AuthorOptions returns the author picker entries, sentinel first
// GET /api/authors/options
func (ac *AuthorsController) AuthorOptions(c *gin.Context) {
	options, err := ac.registry.ListForSelection()
	if err != nil {
		respondInternalError(c, err, "author options")
		return
	}
	c.JSON(http.StatusOK, options)
}
