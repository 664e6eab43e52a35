package models

import "time"

// User 用户视图模型（只携带展示所需字段，账户数据由后端管理）
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
