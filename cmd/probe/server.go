/*
 * @author: sun977
 * @description: Server 模式子命令
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"neoprobe/internal/app"
	"neoprobe/internal/config"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 API 服务模式",
	Long: `以守护进程方式启动 neoprobe，提供批次扫描与渗透会话的HTTP接口。

示例:
  neoprobe server --config configs/config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer() {
	loader := config.NewConfigLoader(cfgFile, "NEOPROBE")
	cfg, err := loader.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down neoprobe server...")

	// 给在途请求和任务5秒钟收尾
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Stop(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
