package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/internal/service/relatorio"
)

// responderErro maps the domain error taxonomy onto HTTP responses. Every
// failure of a user-initiated operation surfaces here; nothing is swallowed.
func responderErro(c *gin.Context, logger *zap.Logger, err error) {
	var validacao *models.ErroValidacao
	var persistencia *models.ErroPersistencia

	switch {
	case errors.As(err, &validacao):
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.Mensagem, "campo": validacao.Campo})

	case errors.Is(err, models.ErrNaoAutenticado), errors.Is(err, models.ErrCredenciaisInvalidas):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrEmailEmUso):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrAnimalNaoEncontrado), errors.Is(err, models.ErrContaNaoEncontrada):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, relatorio.ErrExportacaoIndisponivel):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	case errors.As(err, &persistencia):
		logger.Error("store operation failed", zap.String("op", persistencia.Op), zap.Error(persistencia.Err))
		c.JSON(http.StatusBadGateway, gin.H{"error": persistencia.Error()})

	default:
		logger.Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno"})
	}
}
