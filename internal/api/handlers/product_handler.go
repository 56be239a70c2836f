package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teja-0311/Kisanmarket/internal/services"
	"github.com/teja-0311/Kisanmarket/internal/storage"
)

// ProductHandler handles listing requests.
type ProductHandler struct {
	productService services.IProductService
	imageStorage   storage.IImageStorage
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.IProductService, imageStorage storage.IImageStorage) *ProductHandler {
	return &ProductHandler{productService: productService, imageStorage: imageStorage}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	views, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetProductByID handles GET /api/products/:id
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	product, err := h.productService.FindByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

// MyProducts handles GET /api/products/mine
func (h *ProductHandler) MyProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	products, err := h.productService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// CreateProduct handles POST /api/products/add. The request is a
// multipart form with the listing fields and an image file.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cropName := c.PostForm("cropName")
	if cropName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cropName is required"})
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
		return
	}
	quantity, err := strconv.ParseInt(c.PostForm("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive integer"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer src.Close()

	imageURL, err := h.imageStorage.UploadImage(c.Request.Context(), src, file.Filename)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image upload failed"})
		return
	}

	input := services.CreateProductInput{
		CropName:    cropName,
		Price:       price,
		Quantity:    quantity,
		Description: c.PostForm("description"),
		Phone:       c.PostForm("phone"),
		Location:    c.PostForm("location"),
		ImageURL:    imageURL,
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Owner account not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, product)
}
