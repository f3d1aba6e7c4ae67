package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chiadex/chiadex/internal/logging"
	"github.com/chiadex/chiadex/internal/metrics"
	"github.com/chiadex/chiadex/internal/types"
)

// ParseHeightMiddleware parses the :height path parameter and stores it in
// the gin context.
func ParseHeightMiddleware(c *gin.Context) {
	heightStr := c.Param("height")
	if heightStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "block height is required"})
		c.Abort()
		return
	}

	height, err := strconv.ParseUint(heightStr, 10, 32)
	if err != nil {
		logging.L.Err(err).Msg("could not parse block height")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse block height"})
		c.Abort()
		return
	}

	c.Set("height", uint32(height))
	c.Next()
}

// ParseCoinIDMiddleware parses the :coin_id path parameter and stores it in
// the gin context.
func ParseCoinIDMiddleware(c *gin.Context) {
	idStr := c.Param("coin_id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin id is required"})
		c.Abort()
		return
	}

	coinID, err := types.Bytes32FromHex(idStr)
	if err != nil {
		logging.L.Err(err).Msg("could not parse coin id")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse coin id"})
		c.Abort()
		return
	}

	c.Set("coinID", coinID)
	c.Next()
}

// ResolveBlockHashMiddleware parses the :hash path parameter and resolves it
// through the hash index to the block's height.
func (h *ApiHandler) ResolveBlockHashMiddleware(c *gin.Context) {
	hashStr := c.Param("hash")
	if hashStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "block hash is required"})
		c.Abort()
		return
	}

	hash, err := types.Bytes32FromHex(hashStr)
	if err != nil {
		logging.L.Err(err).Msg("could not parse block hash")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse block hash"})
		c.Abort()
		return
	}

	height, found, err := h.store.BlockHeight(hash)
	if err != nil {
		logging.L.Err(err).Msg("could not resolve block hash")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		c.Abort()
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		c.Abort()
		return
	}

	c.Set("height", height)
	c.Next()
}

// RequestMetricsMiddleware records count and latency per route template.
func RequestMetricsMiddleware(c *gin.Context) {
	started := time.Now()
	c.Next()
	metrics.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), started)
}
