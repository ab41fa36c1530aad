package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/service/relatorio"
)

// RelatorioHandler exposes the herd summary and the spreadsheet export.
type RelatorioHandler struct {
	svc             *relatorio.Service
	horizontePadrao int
	logger          *zap.Logger
}

// NewRelatorioHandler constructs the HTTP handler adapter. horizontePadrao
// is the default reminder horizon in days.
func NewRelatorioHandler(svc *relatorio.Service, horizontePadrao int, logger *zap.Logger) *RelatorioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelatorioHandler{svc: svc, horizontePadrao: horizontePadrao, logger: logger}
}

// Resumo returns the herd summary. The dias query parameter overrides the
// reminder horizon.
func (h *RelatorioHandler) Resumo(c *gin.Context) {
	dias := h.horizontePadrao
	if v := c.Query("dias"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dias deve ser um inteiro positivo"})
			return
		}
		dias = parsed
	}

	resumo, err := h.svc.GerarResumo(c.Request.Context(), contaID(c), time.Now(), time.Duration(dias)*24*time.Hour)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resumo)
}

// Exportar appends the owner's herd to the configured spreadsheet.
func (h *RelatorioHandler) Exportar(c *gin.Context) {
	linhas, err := h.svc.ExportarRebanho(c.Request.Context(), contaID(c))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"linhasExportadas": linhas})
}
