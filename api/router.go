package api

import (
	"net/http"

	"api_vendas/internal/vendas"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes registers the CORS policy, the health route and every sales
// endpoint on the given Gin engine. The storage is injected so tests can run
// the full router against the in-memory implementation.
func InitRoutes(e *gin.Engine, storage vendas.Storage, logger *zap.Logger, allowedOrigins []string) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	e.Use(cors.New(corsConfig))

	service := vendas.NewService(storage, logger)
	handler := NewVendasHandler(service, logger)

	e.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Gestor de Vendas está funcionando!")
	})

	grupo := e.Group("/api")
	grupo.GET("/vendas", handler.handleListVendas)
	grupo.POST("/vendas", handler.handleCreateVenda)
	grupo.PUT("/vendas/:id", handler.handleUpdateVenda)
	grupo.DELETE("/vendas/:id", handler.handleDeleteVenda)
	grupo.GET("/opcoes/:campo", handler.handleOpcoes)
	grupo.GET("/indicadores", handler.handleIndicadores)
	grupo.GET("/saldos", handler.handleSaldos)
}
