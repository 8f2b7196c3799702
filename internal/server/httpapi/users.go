package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginRequest accepts either a JSON body or an OAuth2 password form.
type loginRequest struct {
	Name     string `json:"name" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) authenticate(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		validationError(c, err)
		return
	}

	token, err := s.users.Authenticate(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		if isUnauthorized(err) {
			unauthorized(c, "Incorrect username or password")
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
