package backend

import (
	"context"
	"net/http"

	"fleamarket_go/models"
)

// categoriesResponse 分类列表响应
type categoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

// GetCategories 获取商品分类（匿名只读，使用共享公钥）
func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var result categoriesResponse
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &result); err != nil {
		return nil, err
	}
	return result.Categories, nil
}
