package config

import (
	"time"
)

// BackendConfig 市场后端API配置
// 所有业务状态都存放在托管后端，本服务只做编排和展示。
type BackendConfig struct {
	BaseURL   string        // 后端API地址
	PublicKey string        // 匿名只读接口使用的共享公钥
	Timeout   time.Duration // 单次请求超时
}

// GetBackendConfig 获取市场后端配置
func GetBackendConfig() *BackendConfig {
	return &BackendConfig{
		BaseURL:   GetEnv("MARKET_API_URL", "https://api.fleamarket.example.com"),
		PublicKey: GetEnv("MARKET_PUBLIC_KEY", ""),
		Timeout:   GetEnvDuration("MARKET_API_TIMEOUT", 15*time.Second),
	}
}
