package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/internal/metrics"
	"github.com/lfmachado/rebanho/internal/service/rebanho"
)

// EventoHandler exposes the four append-only event logs of an animal. There
// is deliberately no update or delete route for individual entries.
type EventoHandler struct {
	svc    *rebanho.Service
	logger *zap.Logger
}

// NewEventoHandler constructs the HTTP handler adapter.
func NewEventoHandler(svc *rebanho.Service, logger *zap.Logger) *EventoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventoHandler{svc: svc, logger: logger}
}

// RegistrarVacina appends a vaccine record.
func (h *EventoHandler) RegistrarVacina(c *gin.Context) {
	h.registrar(c, new(models.Vacina))
}

// RegistrarVermifugacao appends a deworming record.
func (h *EventoHandler) RegistrarVermifugacao(c *gin.Context) {
	h.registrar(c, new(models.Vermifugacao))
}

// RegistrarDoenca appends a disease record.
func (h *EventoHandler) RegistrarDoenca(c *gin.Context) {
	h.registrar(c, new(models.Doenca))
}

// RegistrarPeso appends a monthly weight record.
func (h *EventoHandler) RegistrarPeso(c *gin.Context) {
	h.registrar(c, new(models.PesoMensal))
}

func (h *EventoHandler) registrar(c *gin.Context, registro models.Evento) {
	if err := c.ShouldBindJSON(registro); err != nil {
		h.logger.Warn("invalid event payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	registro, err := h.svc.RegistrarEvento(c.Request.Context(), contaID(c), c.Param("id"), registro)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	metrics.IncEventoRegistrado(string(registro.Log()))
	c.JSON(http.StatusCreated, registro)
}
