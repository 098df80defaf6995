package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fiveheart_storefront/internal/cart"
	"fiveheart_storefront/internal/content"
	"fiveheart_storefront/internal/middleware"
	"fiveheart_storefront/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func cartView(items []models.CartItem) models.CartView {
	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartView{Items: items, Total: cart.Total(items), Count: len(items)}
}

//
// 🟢 GET /api/cart
//
func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.cart.Load(c.Request.Context(), middleware.CartID(c))
	if err != nil {
		h.log.Error("❌ Lecture panier impossible", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, cartView(items))
}

//
// 🟢 POST /api/cart/items
//
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		NID models.FlexString `json:"nid"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(string(input.NID)) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nid is required"})
		return
	}

	ctx := c.Request.Context()
	course, err := h.courses.CourseDetail(ctx, string(input.NID))
	if errors.Is(err, content.ErrCourseNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	if err != nil {
		h.log.Error("❌ Fiche cours indisponible", zap.String("nid", string(input.NID)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load course"})
		return
	}

	items, err := h.cart.Append(ctx, middleware.CartID(c), course)
	if err != nil {
		h.log.Error("❌ Ajout panier impossible", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, cartView(items))
}

//
// 🔴 DELETE /api/cart/items/:index
//
func (h *Handler) RemoveFromCart(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item index"})
		return
	}

	items, err := h.cart.RemoveAt(c.Request.Context(), middleware.CartID(c), index)
	if errors.Is(err, cart.ErrIndexOutOfRange) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	if err != nil {
		h.log.Error("❌ Suppression ligne panier impossible", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, cartView(items))
}

//
// 🔴 DELETE /api/cart
//
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), middleware.CartID(c)); err != nil {
		h.log.Error("❌ Vidage panier impossible", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, cartView(nil))
}
