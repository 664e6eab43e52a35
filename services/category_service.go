package services

import (
	"context"
	"encoding/json"
	"time"

	"fleamarket_go/backend"
	"fleamarket_go/config"
	"fleamarket_go/middleware"
	"fleamarket_go/models"

	"go.uber.org/zap"
)

const (
	categoryCacheKey = "categories:taxonomy"
	categoryCacheTTL = 10 * time.Minute
)

// CategoryService 商品分类服务
// 类目树由托管后端维护，这里用Redis缓存10分钟减少重复拉取。
type CategoryService struct {
	client *backend.Client
}

// NewCategoryService 创建分类服务实例
func NewCategoryService(client ...*backend.Client) *CategoryService {
	c := backend.Get()
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &CategoryService{client: c}
}

// GetCategories 获取商品分类
// 缓存读写失败都是静默的：记日志后直接走后端。
func (cs *CategoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	// 先尝试从Redis缓存获取
	if config.RedisClient != nil {
		cached, err := config.RedisClient.Get(ctx, categoryCacheKey).Result()
		if err == nil {
			var categories []models.Category
			if json.Unmarshal([]byte(cached), &categories) == nil {
				return categories, nil
			}
		}
	}

	categories, err := cs.client.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	// 异步缓存到Redis
	go func() {
		if config.RedisClient == nil {
			return
		}
		data, err := json.Marshal(categories)
		if err != nil {
			return
		}
		if err := config.RedisClient.Set(context.Background(), categoryCacheKey, data, categoryCacheTTL).Err(); err != nil {
			middleware.WarnLogger("failed to cache categories", zap.Error(err))
		}
	}()

	return categories, nil
}
