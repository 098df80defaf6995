package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxOrderBody = 1 << 20

var errInvalidJSON = errors.New("invalid JSON body")

// POST /api/log-purchase : relaie la commande telle quelle avec le cookie de l'appelant
func (h *Handler) LogPurchase(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxOrderBody))
	if err == nil && !json.Valid(body) {
		err = errInvalidJSON
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.log.Info("🔄 Logging commande en amont", zap.Int("bytes", len(body)))

	if err := h.purchases.Forward(c.Request.Context(), body, c.GetHeader("Cookie")); err != nil {
		h.log.Error("❌ Erreur logging commande", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order logged upstream"})
}
