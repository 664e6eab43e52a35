package controllers

import (
	"errors"
	"strconv"

	"fleamarket_go/models"
	"fleamarket_go/services"
	"fleamarket_go/utils"

	"github.com/gin-gonic/gin"
)

// ListingController 商品发布控制器
type ListingController struct {
	listingService  *services.ListingService
	categoryService *services.CategoryService
}

// NewListingController 创建商品发布控制器实例
func NewListingController() *ListingController {
	return &ListingController{
		listingService:  services.NewListingService(),
		categoryService: services.NewCategoryService(),
	}
}

// CreateListing 创建商品发布
// @Summary 创建商品发布
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body models.ListingInput true "商品信息"
// @Success 200 {object} utils.Response
// @Router /api/listings [post]
func (lc *ListingController) CreateListing(c *gin.Context) {
	var input models.ListingInput
	if err := utils.BindAndValidate(c, &input); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	listing, err := lc.listingService.Create(c, input)
	if err != nil {
		if errors.Is(err, services.ErrTooManyImages) {
			utils.ValidationError(c, err.Error())
			return
		}
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"listing": listing})
}

// UpdateListing 编辑商品发布
func (lc *ListingController) UpdateListing(c *gin.Context) {
	listingID := c.Param("id")

	var input models.ListingInput
	if err := utils.BindAndValidate(c, &input); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	listing, err := lc.listingService.Update(c, listingID, input)
	if err != nil {
		if errors.Is(err, services.ErrTooManyImages) {
			utils.ValidationError(c, err.Error())
			return
		}
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"listing": listing})
}

// UploadImages 批量上传商品图片
// 逐个串行处理，单个文件失败不中断批次；
// existing_count 用于计算剩余容量（每个商品最多10张）。
func (lc *ListingController) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.ValidationError(c, "failed to read upload form")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.ValidationError(c, "no images found in upload")
		return
	}

	existingCount, _ := strconv.Atoi(c.DefaultPostForm("existing_count", "0"))

	report := lc.listingService.UploadImages(c, files, existingCount)

	utils.Success(c, report)
}

// GetCategories 获取商品分类（匿名可访问）
func (lc *ListingController) GetCategories(c *gin.Context) {
	categories, err := lc.categoryService.GetCategories(c)
	if err != nil {
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"categories": categories})
}
