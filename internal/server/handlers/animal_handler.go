package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/metrics"
	"github.com/lfmachado/rebanho/internal/service/rebanho"
)

// ContaIDKey is the gin context key under which the auth middleware stores
// the authenticated account id.
const ContaIDKey = "contaID"

func contaID(c *gin.Context) string {
	return c.GetString(ContaIDKey)
}

// AnimalHandler exposes the herd CRUD and live-stream endpoints.
type AnimalHandler struct {
	svc    *rebanho.Service
	logger *zap.Logger
}

// NewAnimalHandler constructs the HTTP handler adapter.
func NewAnimalHandler(svc *rebanho.Service, logger *zap.Logger) *AnimalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnimalHandler{svc: svc, logger: logger}
}

// Listar returns the owner's herd, narrowed by the optional busca and tipo
// query parameters.
func (h *AnimalHandler) Listar(c *gin.Context) {
	animais, err := h.svc.Listar(c.Request.Context(), contaID(c))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	animais = rebanho.FiltrarRebanho(animais, c.Query("busca"), c.Query("tipo"))
	c.JSON(http.StatusOK, animais)
}

// Criar registers a new animal for the owner.
func (h *AnimalHandler) Criar(c *gin.Context) {
	var in rebanho.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	animal, err := h.svc.Criar(c.Request.Context(), contaID(c), in)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	metrics.IncAnimalCriado()
	c.JSON(http.StatusCreated, animal)
}

// Buscar returns one animal of the owner.
func (h *AnimalHandler) Buscar(c *gin.Context) {
	animal, err := h.svc.Buscar(c.Request.Context(), contaID(c), c.Param("id"))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Atualizar overwrites the mutable fields of an animal.
func (h *AnimalHandler) Atualizar(c *gin.Context) {
	var in rebanho.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	animal, err := h.svc.Atualizar(c.Request.Context(), contaID(c), c.Param("id"), in)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Excluir removes an animal. The mobile client asks the user for
// confirmation before calling this; the operation itself is irreversible.
func (h *AnimalHandler) Excluir(c *gin.Context) {
	if err := h.svc.Excluir(c.Request.Context(), contaID(c), c.Param("id")); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	metrics.IncAnimalExcluido()
	c.Status(http.StatusNoContent)
}

// Acompanhar streams snapshots of one animal as server-sent events until the
// client disconnects. Disconnecting cancels the request context, which
// releases the underlying change stream.
func (h *AnimalHandler) Acompanhar(c *gin.Context) {
	ctx := c.Request.Context()

	ch, err := h.svc.Acompanhar(ctx, contaID(c), c.Param("id"))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(w io.Writer) bool {
		select {
		case animal, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("animal", animal)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// AcompanharRebanho streams full-herd snapshots as server-sent events.
func (h *AnimalHandler) AcompanharRebanho(c *gin.Context) {
	ctx := c.Request.Context()

	ch, err := h.svc.AcompanharRebanho(ctx, contaID(c))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(w io.Writer) bool {
		select {
		case animais, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("rebanho", animais)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
