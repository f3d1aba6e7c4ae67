package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/config"
	"github.com/chiadex/chiadex/internal/logging"
	"github.com/chiadex/chiadex/internal/types"
)

// Block is the wire form of one block.
type Block struct {
	Height uint32 `json:"height"`
	types.BlockRecord
}

// Coin is the wire form of one coin. SpentHeight is null until the coin is
// spent.
type Coin struct {
	CoinID types.Bytes32 `json:"coin_id"`
	types.CoinRecord
	SpentHeight *uint32 `json:"spent_height"`
}

type StateResponse struct {
	PeakHeight uint32 `json:"peak_height"`
}

type BlockResponse struct {
	Block Block `json:"block"`
}

type BlocksResponse struct {
	Blocks []Block `json:"blocks"`
}

type CoinsResponse struct {
	Coins []Coin `json:"coins"`
}

// CoinResponse carries one coin plus its spend payloads once it is spent.
type CoinResponse struct {
	Coin         Coin         `json:"coin"`
	PuzzleReveal *types.Bytes `json:"puzzle_reveal"`
	Solution     *types.Bytes `json:"solution"`
}

// ApiHandler serves read queries against one store.
type ApiHandler struct {
	store *chaindb.Store
}

func NewApiHandler(store *chaindb.Store) *ApiHandler {
	return &ApiHandler{store: store}
}

func (h *ApiHandler) GetState(c *gin.Context) {
	peak, _, err := h.store.PeakHeight()
	if err != nil {
		logging.L.Err(err).Msg("error fetching peak height")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	c.JSON(http.StatusOK, StateResponse{PeakHeight: peak})
}

func (h *ApiHandler) GetLatestBlock(c *gin.Context) {
	peak, found, err := h.store.PeakHeight()
	if err != nil {
		logging.L.Err(err).Msg("error fetching peak height")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no blocks stored"})
		return
	}

	rec, found, err := h.store.Block(peak)
	if err != nil {
		logging.L.Err(err).Msg("error fetching block")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}

	c.JSON(http.StatusOK, BlockResponse{
		Block: Block{Height: peak, BlockRecord: *rec},
	})
}

// GetBlock serves the height and hash block routes; the middlewares resolve
// either path parameter to the height stored in the context.
func (h *ApiHandler) GetBlock(c *gin.Context) {
	heightVal, exists := c.Get("height")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "height not found"})
		return
	}
	height, ok := heightVal.(uint32)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid height type"})
		return
	}

	rec, found, err := h.store.Block(height)
	if err != nil {
		logging.L.Err(err).Msg("error fetching block")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}

	c.JSON(http.StatusOK, BlockResponse{
		Block: Block{Height: height, BlockRecord: *rec},
	})
}

func (h *ApiHandler) GetBlocks(c *gin.Context) {
	limit := config.PageSizeDefault
	if limitStr := c.Query("limit"); limitStr != "" {
		v, err := strconv.ParseUint(limitStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = uint32(v)
	}

	var start *uint32
	if startStr := c.Query("start"); startStr != "" {
		v, err := strconv.ParseUint(startStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
			return
		}
		s := uint32(v)
		start = &s
	}

	reverse := false
	if revStr := c.Query("reverse"); revStr != "" {
		v, err := strconv.ParseBool(revStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reverse parameter"})
			return
		}
		reverse = v
	}

	// The window is half-open on heights. A forward page runs up from start,
	// a reverse page ends at start (or the peak) and extends limit blocks
	// down. Bounds saturate rather than wrap.
	var lo, hi uint32
	dir := chaindb.Ascending
	if reverse {
		dir = chaindb.Descending
		end := uint32(0)
		if start != nil {
			end = *start
		} else {
			peak, _, err := h.store.PeakHeight()
			if err != nil {
				logging.L.Err(err).Msg("error fetching peak height")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "could not retrieve data from database",
				})
				return
			}
			end = peak
		}
		hi = end
		if hi < math.MaxUint32 {
			hi++
		}
		if hi > limit {
			lo = hi - limit
		}
	} else {
		if start != nil {
			lo = *start
		}
		hi = lo + limit
		if hi < lo {
			hi = math.MaxUint32
		}
	}

	entries, err := h.store.BlocksRange(lo, hi, dir)
	if err != nil {
		logging.L.Err(err).Msg("error scanning blocks")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}

	blocks := make([]Block, len(entries))
	for i, e := range entries {
		blocks[i] = Block{Height: e.Height, BlockRecord: e.Record}
	}
	c.JSON(http.StatusOK, BlocksResponse{Blocks: blocks})
}

func (h *ApiHandler) GetCoinsByBlock(c *gin.Context) {
	heightVal, exists := c.Get("height")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "height not found"})
		return
	}
	height, ok := heightVal.(uint32)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid height type"})
		return
	}

	created, err := h.store.CoinsByCreatedHeight(height)
	if err != nil {
		logging.L.Err(err).Msg("error fetching created coins")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	spent, err := h.store.CoinsBySpentHeight(height)
	if err != nil {
		logging.L.Err(err).Msg("error fetching spent coins")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}

	// A coin both created and spent at this height appears once, first seen
	// wins the position.
	seen := make(map[types.Bytes32]struct{}, len(created)+len(spent))
	ids := make([]types.Bytes32, 0, len(created)+len(spent))
	for _, id := range append(created, spent...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	coins, err := h.resolveCoins(ids)
	if err != nil {
		logging.L.Err(err).Msg("error resolving coins")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	c.JSON(http.StatusOK, CoinsResponse{Coins: coins})
}

func (h *ApiHandler) GetCoinsByParent(c *gin.Context) {
	idVal, exists := c.Get("coinID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "coinID not found"})
		return
	}
	coinID, ok := idVal.(types.Bytes32)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid coinID type"})
		return
	}

	ids, err := h.store.CoinsByParent(coinID)
	if err != nil {
		logging.L.Err(err).Msg("error fetching children")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}

	coins, err := h.resolveCoins(ids)
	if err != nil {
		logging.L.Err(err).Msg("error resolving coins")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	c.JSON(http.StatusOK, CoinsResponse{Coins: coins})
}

func (h *ApiHandler) GetCoinByID(c *gin.Context) {
	idVal, exists := c.Get("coinID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "coinID not found"})
		return
	}
	coinID, ok := idVal.(types.Bytes32)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid coinID type"})
		return
	}

	rec, found, err := h.store.Coin(coinID)
	if err != nil {
		logging.L.Err(err).Msg("error fetching coin")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "coin not found"})
		return
	}

	spend, found, err := h.store.CoinSpend(coinID)
	if err != nil {
		logging.L.Err(err).Msg("error fetching coin spend")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not retrieve data from database",
		})
		return
	}

	resp := CoinResponse{Coin: Coin{CoinID: coinID, CoinRecord: *rec}}
	if found {
		spentHeight := spend.SpentHeight
		resp.Coin.SpentHeight = &spentHeight
		resp.PuzzleReveal = &spend.PuzzleReveal
		resp.Solution = &spend.Solution
	}
	c.JSON(http.StatusOK, resp)
}

// resolveCoins loads the record and spend state for each id. Index entries
// without a stored record are skipped.
func (h *ApiHandler) resolveCoins(ids []types.Bytes32) ([]Coin, error) {
	coins := make([]Coin, 0, len(ids))
	for _, id := range ids {
		rec, found, err := h.store.Coin(id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		coin := Coin{CoinID: id, CoinRecord: *rec}

		spend, found, err := h.store.CoinSpend(id)
		if err != nil {
			return nil, err
		}
		if found {
			spentHeight := spend.SpentHeight
			coin.SpentHeight = &spentHeight
		}
		coins = append(coins, coin)
	}
	return coins, nil
}
