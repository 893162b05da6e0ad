package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/sitewave-growth/internal/app"
	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.LoggerOptions())
	stdLog := logger.StdLogger()

	checkJWTSecret(cfg, stdLog)

	if err := openDatabase(cfg); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
	initDefaultAdmin(cfg, stdLog)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	})
	if err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func openDatabase(cfg *config.Config) error {
	return models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
}

// checkJWTSecret 生产模式下弱密钥直接拒绝启动，其余模式仅告警
func checkJWTSecret(cfg *config.Config, stdLog *log.Logger) {
	if !isWeakSecret(cfg.JWT.SecretKey) {
		return
	}
	if cfg.Server.Mode == "release" {
		stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
	}
	stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
}

// initDefaultAdmin 初始化默认管理员，生产模式下必须显式提供密码
func initDefaultAdmin(cfg *config.Config, stdLog *log.Logger) {
	username := os.Getenv("SW_DEFAULT_ADMIN_USERNAME")
	password := os.Getenv("SW_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && password == "" {
		stdLog.Printf("警告: 未设置 SW_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
		return
	}
	if err := models.InitDefaultAdmin(username, password); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "███████╗██╗████████╗███████╗██╗    ██╗ █████╗ ██╗   ██╗███████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔════╝██║╚══██╔══╝██╔════╝██║    ██║██╔══██╗██║   ██║██╔════╝" + ansiReset)
	fmt.Println(ansiCyan + "███████╗██║   ██║   █████╗  ██║ █╗ ██║███████║██║   ██║█████╗  " + ansiReset)
	fmt.Println(ansiCyan + "╚════██║██║   ██║   ██╔══╝  ██║███╗██║██╔══██║╚██╗ ██╔╝██╔══╝  " + ansiReset)
	fmt.Println(ansiCyan + "███████║██║   ██║   ███████╗╚███╔███╔╝██║  ██║ ╚████╔╝ ███████╗" + ansiReset)
	fmt.Println(ansiCyan + "╚══════╝╚═╝   ╚═╝   ╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝  ╚═══╝  ╚══════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "SiteWave Growth Engine" + ansiReset)
	fmt.Println(ansiBlue + "病毒式传播评分 / 邀请返佣 / 展示位排行" + ansiReset)
	fmt.Println(ansiDim + strings.Repeat("-", 62) + ansiReset)
}

// isWeakSecret 长度不足或命中已知占位串都算弱密钥
func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lowered := strings.ToLower(secret)
	for _, placeholder := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(lowered, placeholder) {
			return true
		}
	}
	return false
}
