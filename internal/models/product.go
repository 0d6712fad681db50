package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// InventoryStatus represents the inventory status of a product
type InventoryStatus string

const (
	InventoryStatusInStock    InventoryStatus = "IN_STOCK"
	InventoryStatusOutOfStock InventoryStatus = "OUT_OF_STOCK"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Product represents a product entity synchronized from the remote catalog.
/// StockCode is the unique external key: the synchronizer always looks up by
// stock code before creating, so two products can never share one.
type Product struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StockCode        string          `json:"stockCode" gorm:"not null;uniqueIndex:idx_products_stock_code"`
	Name             string          `json:"name" gorm:"not null"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Price            string          `json:"price" gorm:"not null"`
	Status           ProductStatus   `json:"status" gorm:"not null;default:'ACTIVE';index"`
	Visible          bool            `json:"visible" gorm:"not null;default:true"`
	InventoryStatus  InventoryStatus `json:"inventoryStatus" gorm:"not null;default:'IN_STOCK'"`
	StockManaged     bool            `json:"stockManaged" gorm:"not null;default:false"`
	Categories       []Category      `json:"categories,omitempty" gorm:"many2many:product_categories"`
	FeaturedImageID  *uuid.UUID      `json:"featuredImageId,omitempty" gorm:"type:uuid"`
	FeaturedImage    *MediaAsset     `json:"featuredImage,omitempty" gorm:"foreignKey:FeaturedImageID"`
	Metadata         JSON            `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Category represents a flat, name-keyed taxonomy node
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_categories_name"`
	Slug      string    `json:"slug" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MediaAsset represents a stored binary object attached to a product.
// ContentType is the type detected from the stored bytes, not the type the
// remote server declared. Lifetime is independent of the catalog record that
// sourced it: assets persist until explicitly purged.
type MediaAsset struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	FileName    string    `json:"fileName" gorm:"not null;index"`
	FilePath    string    `json:"filePath" gorm:"not null"`
	SourceURL   string    `json:"sourceUrl"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	Metadata    JSON      `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Setting is a simple name/value row. Import stats and the catalog API token
// live here, keyed the same way the host store keys its options.
type Setting struct {
	Name      string    `json:"name" gorm:"primary_key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Response types

type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type CategoryListResponse struct {
	Success bool       `json:"success"`
	Data    []Category `json:"data"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// TableName returns the table name for the MediaAsset model
func (MediaAsset) TableName() string {
	return "media_assets"
}

// TableName returns the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}
