package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"fleamarket_go/config"
)

// Client 市场后端API客户端
// 所有权威状态都在托管后端，这里只负责请求编排。
// 每次请求前从会话客户端重新读取Bearer令牌，令牌不跨调用缓存。
type Client struct {
	config     *config.BackendConfig
	httpClient *http.Client
}

// NewClient 创建后端客户端实例
func NewClient(backendConfig ...*config.BackendConfig) *Client {
	cfg := config.GetBackendConfig()
	if len(backendConfig) > 0 && backendConfig[0] != nil {
		cfg = backendConfig[0]
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Get 获取后端客户端实例（进程级单例，仅构造一次）
var (
	instance *Client
	once     sync.Once
)

func Get() *Client {
	once.Do(func() {
		instance = NewClient()
	})
	return instance
}

// APIError 后端返回的错误
// Message是后端提供的原因，没有时使用通用提示。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrMissingSession 写操作缺少会话令牌
var ErrMissingSession = errors.New("missing session token")

// apiError 后端错误响应体
type apiError struct {
	Error string `json:"error"`
}

// actionResponse 状态变更类接口的布尔成功响应
type actionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// do 执行一次后端请求
// 写操作必须带Bearer令牌；匿名只读接口退回共享公钥。
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// 每次调用前重新读取令牌
	token := config.GetSessionClient().TokenFrom(ctx)
	switch {
	case token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case method == http.MethodGet && c.config.PublicKey != "":
		req.Header.Set("X-Api-Key", c.config.PublicKey)
	case method != http.MethodGet:
		return ErrMissingSession
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apiError{}
		_ = json.Unmarshal(respBody, &apiErr)
		message := apiErr.Error
		if message == "" {
			message = "request failed, please try again"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}

	return nil
}

// doAction 执行状态变更请求并检查布尔成功标志
func (c *Client) doAction(ctx context.Context, method, path string, body interface{}) error {
	var result actionResponse
	if err := c.do(ctx, method, path, body, &result); err != nil {
		return err
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "request failed, please try again"
		}
		return &APIError{StatusCode: http.StatusOK, Message: message}
	}
	return nil
}

// uploadResponse 图片上传响应
type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// UploadImage 上传单张图片（multipart，返回存储URL）
func (c *Client) UploadImage(ctx context.Context, fileName string, data []byte) (string, error) {
	token := config.GetSessionClient().TokenFrom(ctx)
	if token == "" {
		return "", ErrMissingSession
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/upload-image", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read backend response: %w", err)
	}

	var result uploadResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = json.Unmarshal(respBody, &result)
		message := result.Error
		if message == "" {
			message = "image upload failed"
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.URL == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "image upload failed"}
	}

	return result.URL, nil
}

// Ping 探测后端可达性
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/categories", nil, nil)
}
