package models

import "time"

// ListingSummary 商品摘要（报价等对象中冗余携带）
type ListingSummary struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Price  float64  `json:"price"`
	Images []string `json:"images,omitempty"`
}

// Listing 商品发布模型（托管后端下发的完整视图）
type Listing struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"category_id"`
	Price       float64   `json:"price"`
	Condition   string    `json:"condition,omitempty"`
	Images      []string  `json:"images"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MaxListingImages 单个商品最多图片数
const MaxListingImages = 10

// ListingInput 创建/编辑商品的请求结构
type ListingInput struct {
	Title       string   `json:"title" binding:"required,max=120"`
	Description string   `json:"description" binding:"max=2000"`
	CategoryID  string   `json:"category_id" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Condition   string   `json:"condition" binding:"omitempty,oneof=new like_new good fair"`
	Images      []string `json:"images" binding:"max=10,dive,url"`
}
