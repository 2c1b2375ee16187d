package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	JWTSecret                string
	LogLevel                 string
	FrontendURL              string
	BackendURL               string
	StorageBackend           string // local / s3 / gcs
	S3Region                 string
	S3Bucket                 string
	GCSBucketName            string
	GCSCredentialsFile       string
	LocalStoragePath         string
	FeedLimit                int // 订阅帖子流的默认条数上限
	Debug                    bool
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		FrontendURL:              getEnv("FRONTEND_URL", "http://localhost:3000"),
		BackendURL:               getEnv("BACKEND_URL", "http://localhost:8080"),
		StorageBackend:           getEnv("STORAGE_BACKEND", "local"),
		S3Region:                 getEnv("S3_REGION", "us-west-2"),
		S3Bucket:                 getEnv("S3_BUCKET", "gymunyfu-uploads"),
		GCSBucketName:            getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile:       getEnv("GCS_CREDENTIALS_FILE", ""),
		LocalStoragePath:         getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		FeedLimit:                getEnvAsInt("FEED_LIMIT", 50),
		Debug:                    getEnvAsBool("DEBUG", true),
	}

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。Firestore 项目：%s", AppConfig.FirestoreProjectID)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.FirestoreProjectID == "" {
		log.Fatal("错误：Firestore 项目未配置")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	switch AppConfig.StorageBackend {
	case "local", "s3", "gcs":
	default:
		log.Fatalf("错误：未知的存储后端 %s", AppConfig.StorageBackend)
	}
}
