package server

import (
	"net/http"
	"strconv"
	"strings"

	"astrografia/src/auth"
	"astrografia/src/helpers"
	"astrografia/src/models"
	"astrografia/src/narrative"
	"astrografia/src/storage"

	"github.com/gin-gonic/gin"
)

func (s *APIServer) listPerspectives(c *gin.Context) {
	id, _ := auth.UserID(c)
	page, perPage := storage.NormalizePage(queryInt(c, "page", 1), queryInt(c, "per_page", storage.DefaultPerPage))

	result, err := s.deps.Database.ListPerspectives(c.Request.Context(), id, page, perPage)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *APIServer) createPerspective(c *gin.Context) {
	id, _ := auth.UserID(c)

	var in struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, helpers.NewValidationError("body", "invalid JSON body"))
		return
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		s.writeError(c, helpers.NewValidationError("text", "missing required fields: text"))
		return
	}

	md, _ := s.deps.Interpreter.Interpret(c.Request.Context(), models.MNarrativeRequest{FreeText: text})

	p, err := s.deps.Database.CreatePerspective(c.Request.Context(), id, text, md)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "perspective created", "perspective": p})
}

// -----------------------------------------------------------------------------

func (s *APIServer) interpretPerspective(c *gin.Context) {
	userID, _ := auth.UserID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.writeError(c, helpers.NewNotFoundError("perspective not found"))
		return
	}

	p, err := s.deps.Database.GetPerspective(c.Request.Context(), userID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if strings.TrimSpace(p.ResponseMD) == "" {
		s.writeError(c, helpers.NewNotFoundError("no interpretation available"))
		return
	}

	html, err := narrative.ToHTML(p.ResponseMD)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"perspective_id":      p.ID,
		"text":                p.Text,
		"interpretation_md":   p.ResponseMD,
		"interpretation_html": html,
	})
}
