package handlers

import (
	"errors"
	"net/http"

	"fiveheart_storefront/internal/checkout"
	"fiveheart_storefront/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// POST /api/checkout/validate
func (h *Handler) ValidateCheckout(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout form"})
		return
	}
	errs := form.Validate()
	c.JSON(http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs})
}

// POST /api/checkout
func (h *Handler) Checkout(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"state": checkout.StateIdle, "error": "Invalid checkout form"})
		return
	}

	submitter := checkout.NewSubmitter(middleware.CartID(c), h.cart, h.purchases, h.log)
	if h.notifier != nil {
		submitter.WithNotifier(h.notifier)
	}
	submitter.SetForm(form)

	order, err := submitter.Submit(c.Request.Context(), c.GetHeader("Cookie"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"state": submitter.State(), "order": order})
	case errors.Is(err, checkout.ErrInvalidForm):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"state": submitter.State(), "errors": submitter.Errors()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"state": submitter.State(), "error": "Your cart is empty."})
	case errors.Is(err, checkout.ErrSubmissionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"state": submitter.State(), "error": "Failed to log order. Please try again."})
	default:
		h.log.Error("❌ Checkout impossible", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"state": submitter.State(), "error": "Checkout failed"})
	}
}
