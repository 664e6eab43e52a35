package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	// 自定义验证错误缓存
	validationErrorsCache = make(map[string]string)
)

// 初始化验证器
func init() {
	// 注册自定义验证规则
	validate.RegisterValidation("rating", validateRating)
	validate.RegisterValidation("posamount", validatePositiveAmount)
}

// Validator 验证器结构
type Validator struct {
	validator *validator.Validate
}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{
		validator: validate,
	}
}

// Validate 验证结构体
func (v *Validator) Validate(obj interface{}) error {
	if err := v.validator.Struct(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// formatValidationErrors 格式化验证错误信息
func formatValidationErrors(errors []validator.FieldError) error {
	errorMap := make(map[string]string)

	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		// 先尝试从缓存中获取错误信息
		cacheKey := fmt.Sprintf("%s_%s", field, tag)
		if msg, exists := validationErrorsCache[cacheKey]; exists {
			errorMap[field] = msg
			continue
		}

		// 生成自定义错误信息
		msg := getErrorMessage(field, tag, param)
		validationErrorsCache[cacheKey] = msg
		errorMap[field] = msg
	}

	return &ValidationFieldError{Errors: errorMap}
}

// ValidationFieldError 验证错误结构
type ValidationFieldError struct {
	Errors map[string]string `json:"errors"`
}

func (ve *ValidationFieldError) Error() string {
	return fmt.Sprintf("Validation failed: %v", ve.Errors)
}

// getErrorMessage 获取错误消息
func getErrorMessage(field, tag, param string) string {
	// 中文错误消息映射
	errorMessages := map[string]string{
		"required":  "%s不能为空",
		"min":       "%s长度不能小于%s",
		"max":       "%s长度不能大于%s",
		"gt":        "%s必须大于%s",
		"gte":       "%s必须大于或等于%s",
		"lt":        "%s必须小于%s",
		"lte":       "%s必须小于或等于%s",
		"oneof":     "%s必须是以下值之一: %s",
		"numeric":   "%s必须是数字",
		"url":       "%s必须是有效的链接",
		"rating":    "%s必须是1到5之间的整数",
		"posamount": "%s必须是有效的正数金额",
	}

	fieldNames := map[string]string{
		"title":          "标题",
		"description":    "描述",
		"price":          "价格",
		"content":        "内容",
		"rating":         "评分",
		"comment":        "评论",
		"counter_amount": "还价金额",
		"category_id":    "分类",
	}

	fieldName := fieldNames[strings.ToLower(field)]
	if fieldName == "" {
		fieldName = field
	}

	template, exists := errorMessages[tag]
	if !exists {
		return fmt.Sprintf("%s验证失败", fieldName)
	}

	return fmt.Sprintf(template, fieldName, param)
}

// 自定义验证规则

// validateRating 评分验证（1到5的整数）
func validateRating(fl validator.FieldLevel) bool {
	rating := fl.Field().Int()
	return rating >= 1 && rating <= 5
}

// validatePositiveAmount 金额输入验证（字符串形式的正数）
func validatePositiveAmount(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return false
	}
	amount, err := strconv.ParseFloat(raw, 64)
	return err == nil && amount > 0
}

// BindAndValidate 绑定并验证请求
func BindAndValidate(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return err
	}

	v := NewValidator()
	if err := v.Validate(obj); err != nil {
		return err
	}

	return nil
}

// SanitizeString 清理字符串（防止XSS）
func SanitizeString(input string) string {
	// 移除JavaScript代码
	jsRegex := regexp.MustCompile(`<script[^>]*>.*?</script>`)
	cleaned := jsRegex.ReplaceAllString(input, "")

	// 移除HTML标签
	reg := regexp.MustCompile(`<[^>]*>`)
	cleaned = reg.ReplaceAllString(cleaned, "")

	return cleaned
}

// LimitStringLength 限制字符串长度
func LimitStringLength(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	return input[:maxLength]
}
