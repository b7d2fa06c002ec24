package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivgrimm/shop_backend/internal/events"
	"github.com/ivgrimm/shop_backend/internal/models"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

// CartEntry is a cart row joined with its product at view time, so later
// product edits show up in the cart.
type CartEntry struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	ProductID   uint    `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Product or User not found"})
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product or User not found"})
		}
		return internalError(c)
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product or User not found"})
		}
		return internalError(c)
	}

	// Repeated adds insert another row on purpose, there is no quantity
	// column.
	item := models.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return internalError(c)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": product.ID,
		"itemID":    item.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product added to cart"})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to delete product from cart"})
	}

	// Ownership-scoped: the row must belong to the current user. Deletes a
	// single row, duplicates stay in the cart.
	var item models.CartItem
	if err := h.DB.Where("product_id = ? AND user_id = ?", productID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to delete product from cart"})
		}
		return internalError(c)
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return internalError(c)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
		"itemID":    item.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted from cart"})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return internalError(c)
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return internalError(c)
	}

	entries := make([]CartEntry, 0, len(items))
	for _, item := range items {
		var product models.Product
		if err := h.DB.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Product vanished from under the cart row; skip it.
				continue
			}
			return internalError(c)
		}
		entries = append(entries, CartEntry{
			ID:          item.ID,
			UserID:      item.UserID,
			ProductID:   item.ProductID,
			Name:        product.Name,
			Price:       product.Price,
			Description: product.Description,
		})
	}

	return c.JSON(http.StatusOK, entries)
}

func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	// One commit clears the cart. Succeeds even when the cart is already
	// empty; no order record is produced.
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		return internalError(c)
	}

	h.publish(c, map[string]any{
		"type":   "cart_checked_out",
		"userID": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Checkout successful"})
}
