package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/service/auth"
)

// AuthHandler exposes signup, login and password management.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type credenciaisRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Cadastrar creates an account and returns a session token.
func (h *AuthHandler) Cadastrar(c *gin.Context) {
	var req credenciaisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	conta, token, err := h.svc.Cadastrar(c.Request.Context(), req.Email, req.Senha)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"conta": conta, "token": token})
}

// Entrar authenticates and returns a session token.
func (h *AuthHandler) Entrar(c *gin.Context) {
	var req credenciaisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	conta, token, err := h.svc.Entrar(c.Request.Context(), req.Email, req.Senha)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conta": conta, "token": token})
}

// AlterarSenha changes the signed-in account's password.
func (h *AuthHandler) AlterarSenha(c *gin.Context) {
	var req struct {
		NovaSenha string `json:"novaSenha"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	if err := h.svc.AlterarSenha(c.Request.Context(), contaID(c), req.NovaSenha); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SolicitarRedefinicao requests a password reset token by email.
func (h *AuthHandler) SolicitarRedefinicao(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	if err := h.svc.SolicitarRedefinicao(c.Request.Context(), req.Email); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// RedefinirSenha consumes a reset token and sets the new password.
func (h *AuthHandler) RedefinirSenha(c *gin.Context) {
	var req struct {
		Token     string `json:"token"`
		NovaSenha string `json:"novaSenha"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	if err := h.svc.RedefinirSenha(c.Request.Context(), req.Token, req.NovaSenha); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
