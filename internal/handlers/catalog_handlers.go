package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

var exportColumns = []string{
	"stockCode", "name", "price", "status", "inventoryStatus",
	"categories", "description", "shortDescription", "externalSku",
}

type CatalogHandler struct {
	repo   *repository.StoreRepository
	cfg    *config.Config
	logger *logrus.Logger
}

func NewCatalogHandler(repo *repository.StoreRepository, cfg *config.Config, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProducts lists products with pagination
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = h.cfg.DefaultPageSize
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	products, total, err := h.repo.GetProducts(page, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list products",
			},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// GetProduct returns a single product by ID
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid product ID",
				Field:   "id",
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		h.respondProductLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// GetProductByStockCode returns a single product by its external stock code
func (h *CatalogHandler) GetProductByStockCode(c *gin.Context) {
	stockCode := c.Param("stockCode")

	product, err := h.repo.GetProductByStockCode(stockCode)
	if err != nil {
		h.respondProductLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// GetCategories lists all categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to list categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Success: true, Data: categories})
}

// ExportProducts downloads the full product list as CSV or XLSX
func (h *CatalogHandler) ExportProducts(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Format must be csv or xlsx",
				Field:   "format",
			},
		})
		return
	}

	products, err := h.repo.ListAllProducts()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load products for export")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to export products",
			},
		})
		return
	}

	if format == "xlsx" {
		h.exportXLSX(c, products)
		return
	}
	h.exportCSV(c, products)
}

func (h *CatalogHandler) exportCSV(c *gin.Context, products []models.Product) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_export.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportColumns)
	for _, product := range products {
		writer.Write(exportRow(product))
	}
}

func (h *CatalogHandler) exportXLSX(c *gin.Context, products []models.Product) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	for rowIdx, product := range products {
		for colIdx, value := range exportRow(product) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_export.xlsx")
	f.Write(c.Writer)
}

func exportRow(product models.Product) []string {
	categoryNames := make([]string, len(product.Categories))
	for i, cat := range product.Categories {
		categoryNames[i] = cat.Name
	}

	externalSKU := ""
	if product.Metadata != nil {
		if v, ok := product.Metadata["external_sku"].(string); ok {
			externalSKU = v
		}
	}

	return []string{
		product.StockCode,
		product.Name,
		product.Price,
		string(product.Status),
		string(product.InventoryStatus),
		strings.Join(categoryNames, ", "),
		product.Description,
		product.ShortDescription,
		externalSKU,
	}
}

func (h *CatalogHandler) respondProductLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Product not found",
			},
		})
		return
	}

	h.logger.WithError(err).Error("Product lookup failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: "Product lookup failed",
		},
	})
}
