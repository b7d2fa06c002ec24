package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ivgrimm/shop_backend/internal/events"
	"github.com/ivgrimm/shop_backend/internal/models"
)

func newProductHandler(t *testing.T) *ProductHandler {
	return &ProductHandler{
		DB:       initTestDB(t),
		Producer: &events.Producer{},
	}
}

func TestAddProduct(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/products/add", map[string]interface{}{
		"name":  "Pen",
		"price": 1.5,
	})
	require.NoError(t, h.AddProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product added successfully", message(t, rec))

	var product models.Product
	require.NoError(t, h.DB.Where("name = ?", "Pen").First(&product).Error)
	require.Equal(t, 1.5, product.Price)
	require.Equal(t, "", product.Description)
}

func TestAddProductMissingFields(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/products/add", map[string]interface{}{"name": "Pen"})
	require.NoError(t, h.AddProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing name or price", message(t, rec))

	rec, c = doJSONRequest(t, e, http.MethodPost, "/api/products/add", map[string]interface{}{"price": 1.5})
	require.NoError(t, h.AddProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing name or price", message(t, rec))

	var count int64
	require.NoError(t, h.DB.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestGetProduct(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	product := models.Product{Name: "Pen", Price: 1.5, Description: "blue ink"}
	require.NoError(t, h.DB.Create(&product).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, product.ID, resp.ID)
	require.Equal(t, "Pen", resp.Name)
	require.Equal(t, 1.5, resp.Price)
	require.Equal(t, "blue ink", resp.Description)

	rec, c = doJSONRequest(t, e, http.MethodGet, "/api/products/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found", message(t, rec))
}

func TestUpdateProductPartial(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	product := models.Product{Name: "Pen", Price: 1.5, Description: "blue ink"}
	require.NoError(t, h.DB.Create(&product).Error)

	// Only price in the body, name and description stay put.
	rec, c := doJSONRequest(t, e, http.MethodPut, "/api/products/update/1", map[string]interface{}{"price": 2.0})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product updated successfully", message(t, rec))

	var updated models.Product
	require.NoError(t, h.DB.First(&updated, product.ID).Error)
	require.Equal(t, "Pen", updated.Name)
	require.Equal(t, 2.0, updated.Price)
	require.Equal(t, "blue ink", updated.Description)

	rec, c = doJSONRequest(t, e, http.MethodPut, "/api/products/update/99", map[string]interface{}{"price": 2.0})
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found", message(t, rec))
}

func TestDeleteProduct(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	user := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, h.DB.Create(&user).Error)
	product := models.Product{Name: "Pen", Price: 1.5}
	require.NoError(t, h.DB.Create(&product).Error)
	require.NoError(t, h.DB.Create(&models.CartItem{UserID: user.ID, ProductID: product.ID}).Error)

	rec, c := doJSONRequest(t, e, http.MethodDelete, "/api/products/delete/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product deleted successfully", message(t, rec))

	var count int64
	require.NoError(t, h.DB.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)

	// Referencing cart rows are cleaned up with the product.
	require.NoError(t, h.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteProductNotFound(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodDelete, "/api/products/delete/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found", message(t, rec))
}

func TestListProducts(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	require.NoError(t, h.DB.Create(&models.Product{Name: "Pen", Price: 1.5, Description: "blue ink"}).Error)
	require.NoError(t, h.DB.Create(&models.Product{Name: "Mug", Price: 7}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/products", nil)
	require.NoError(t, h.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "Pen", resp[0]["name"])
	require.Equal(t, 1.5, resp[0]["price"])
	// The listing is abbreviated, no description field.
	_, present := resp[0]["description"]
	require.False(t, present)
}

func TestListProductsEmpty(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/products", nil)
	require.NoError(t, h.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())
}
