package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/metrics"
	"github.com/lfmachado/rebanho/internal/server/handlers"
	"github.com/lfmachado/rebanho/internal/service/auth"
)

// Handlers groups the HTTP adapters the router wires up.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Animal    *handlers.AnimalHandler
	Evento    *handlers.EventoHandler
	Relatorio *handlers.RelatorioHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc *auth.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	autenticacao := api.Group("/auth")
	autenticacao.POST("/cadastrar", h.Auth.Cadastrar)
	autenticacao.POST("/entrar", h.Auth.Entrar)
	autenticacao.POST("/redefinir/solicitar", h.Auth.SolicitarRedefinicao)
	autenticacao.POST("/redefinir", h.Auth.RedefinirSenha)

	protegido := api.Group("")
	protegido.Use(authMiddleware(authSvc))

	protegido.POST("/auth/senha", h.Auth.AlterarSenha)

	protegido.GET("/animais", h.Animal.Listar)
	protegido.POST("/animais", h.Animal.Criar)
	protegido.GET("/animais/stream", h.Animal.AcompanharRebanho)
	protegido.GET("/animais/:id", h.Animal.Buscar)
	protegido.PUT("/animais/:id", h.Animal.Atualizar)
	protegido.DELETE("/animais/:id", h.Animal.Excluir)
	protegido.GET("/animais/:id/stream", h.Animal.Acompanhar)

	protegido.POST("/animais/:id/vacinas", h.Evento.RegistrarVacina)
	protegido.POST("/animais/:id/vermifugacao", h.Evento.RegistrarVermifugacao)
	protegido.POST("/animais/:id/doencas", h.Evento.RegistrarDoenca)
	protegido.POST("/animais/:id/pesos", h.Evento.RegistrarPeso)

	protegido.GET("/relatorio", h.Relatorio.Resumo)
	protegido.POST("/relatorio/exportar", h.Relatorio.Exportar)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// authMiddleware validates the Bearer token and threads the account id into
// the request context. Handlers never read ambient session state.
func authMiddleware(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "usuário não autenticado"})
			return
		}

		contaID, err := authSvc.VerificarToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "usuário não autenticado"})
			return
		}

		c.Set(handlers.ContaIDKey, contaID)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		metrics.ObserveHTTPRequest(c.Request.Method, strconv.Itoa(c.Writer.Status()), duration.Seconds())

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
