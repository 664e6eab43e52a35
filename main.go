package main

import (
	"log"
	"os"

	"fleamarket_go/config"
	"fleamarket_go/middleware"
	"fleamarket_go/routes"
	"fleamarket_go/websocket"

	"github.com/joho/godotenv"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	//设置环境
	env := os.Getenv("GIN_MODE")
	if env == "" {
		os.Setenv("GIN_MODE", "debug")
	}

	// 初始化日志系统
	if err := middleware.InitLogger(env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.FlushLogger()

	// 初始化Redis（分类缓存、访问日志流；失败时降级运行）
	if err := config.InitializeRedis(); err != nil {
		log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
		log.Println("Continuing without Redis caching...")
	}
	defer config.CloseRedis()

	// 初始化实时消息通道
	if err := websocket.InitLive(); err != nil {
		log.Fatalf("Failed to initialize live message channel: %v", err)
	}
	defer websocket.CloseLive()

	// 设置路由
	r := config.SetupRouter()

	// 注册自定义路由
	routes.SetupRoutes(r)

	if err := config.StartServer(r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
