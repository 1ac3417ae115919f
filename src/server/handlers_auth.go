package server

import (
	"net/http"
	"strings"

	"astrografia/src/auth"
	"astrografia/src/helpers"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// -----------------------------------------------------------------------------

func bindCredentials(c *gin.Context) (credentials, error) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		return in, helpers.NewValidationError("body", "invalid JSON body")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return in, helpers.NewValidationError("email", "email and password are required")
	}
	return in, nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) registerUser(c *gin.Context) {
	in, err := bindCredentials(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.deps.Database.CreateUser(c.Request.Context(), in.Email, hash); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "user created"})
}

// -----------------------------------------------------------------------------

func (s *APIServer) loginUser(c *gin.Context) {
	in, err := bindCredentials(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	user, err := s.deps.Database.GetUserByEmail(c.Request.Context(), in.Email)
	if err != nil && !helpers.IsNotFound(err) {
		s.writeError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, in.Password) {
		s.writeError(c, helpers.NewAuthError("bad email or password"))
		return
	}

	pair, err := s.deps.Tokens.IssuePair(user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// -----------------------------------------------------------------------------

func (s *APIServer) refresh(c *gin.Context) {
	id, _ := auth.UserID(c)
	token, err := s.deps.Tokens.Issue(id, auth.Access)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// -----------------------------------------------------------------------------

func (s *APIServer) protected(c *gin.Context) {
	id, _ := auth.UserID(c)
	user, err := s.deps.Database.GetUserByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in_as": user.Email, "user_id": user.ID})
}
