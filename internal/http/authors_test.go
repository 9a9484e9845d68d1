package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/database/authors"
	"github.com/mrlokans/biblioteca/internal/entities"
	"github.com/mrlokans/biblioteca/internal/events"
)

func setupAuthorsTest(t *testing.T) (*gin.Engine, *authors.Repository, *database.Gateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })

	repo := authors.NewRepository(gw, events.NewHub())
	controller := NewAuthorsController(repo)

	router := gin.New()
	router.GET("/api/authors", controller.ListAuthors)
	router.POST("/api/authors", controller.CreateAuthor)
	router.GET("/api/authors/options", controller.AuthorOptions)
	router.DELETE("/api/authors/:id", controller.DeleteAuthor)

	return router, repo, gw
}

func TestAuthorsController_ListAuthors_Empty(t *testing.T) {
	router, _, _ := setupAuthorsTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/authors", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestAuthorsController_CreateAuthor(t *testing.T) {
	router, _, _ := setupAuthorsTest(t)

	body := bytes.NewBufferString(`{"name":"Gabriel","surname":"García Márquez","nationality":"Colombian"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/authors", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var author entities.Author
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
	assert.NotZero(t, author.ID)
	assert.Equal(t, "García Márquez", author.Surname)
}

func TestAuthorsController_CreateAuthor_MissingSurname(t *testing.T) {
	router, _, _ := setupAuthorsTest(t)

	body := bytes.NewBufferString(`{"name":"Gabriel"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/authors", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorsController_DeleteAuthor_BlockedByBook(t *testing.T) {
	router, repo, gw := setupAuthorsTest(t)

	author, err := repo.Add("Isabel", "Allende", nil, nil)
	require.NoError(t, err)
	_, err = gw.Exec(`INSERT INTO books (isbn, title, author_id, state) VALUES (?, ?, ?, ?)`,
		"978-84-204-8228-5", "La casa de los espíritus", author.ID, entities.StateAvailable)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/authors/%d", author.ID), nil)
	router.ServeHTTP(w, req)

	// Integrity guard surfaces as a conflict.
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "dependent books")
}

func TestAuthorsController_DeleteAuthor_Unknown(t *testing.T) {
	router, _, _ := setupAuthorsTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/authors/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorsController_AuthorOptions_SentinelFirst(t *testing.T) {
	router, repo, _ := setupAuthorsTest(t)

	_, err := repo.Add("Julio", "Cortázar", nil, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/authors/options", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var options []entities.AuthorOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	require.Len(t, options, 2)
	assert.Nil(t, options[0].ID)
	assert.Equal(t, entities.NoAuthorLabel, options[0].Label)
	assert.Equal(t, "Julio Cortázar", options[1].Label)
}
