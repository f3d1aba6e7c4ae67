package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chiadex/chiadex/internal/config"
	"github.com/chiadex/chiadex/internal/logging"
)

// NewRouter assembles the gin engine with all query routes registered.
func NewRouter(api *ApiHandler) *gin.Engine {
	// todo route gin's request log through the zerolog logger
	router := gin.Default()
	router.Use(RequestMetricsMiddleware)
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: true,
	}))

	router.GET("/state", api.GetState)
	router.GET("/blocks/latest", api.GetLatestBlock)
	router.GET("/blocks/height/:height", ParseHeightMiddleware, api.GetBlock)
	router.GET("/blocks/hash/:hash", api.ResolveBlockHashMiddleware, api.GetBlock)
	router.GET("/blocks", api.GetBlocks)
	router.GET("/coins/block/:hash", api.ResolveBlockHashMiddleware, api.GetCoinsByBlock)
	router.GET("/coins/children/:coin_id", ParseCoinIDMiddleware, api.GetCoinsByParent)
	router.GET("/coins/id/:coin_id", ParseCoinIDMiddleware, api.GetCoinByID)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func RunServer(api *ApiHandler) {
	gin.SetMode(gin.ReleaseMode)

	router := NewRouter(api)
	if err := router.Run(config.HTTPHost); err != nil {
		logging.L.Err(err).Msg("could not run server")
	}
}
