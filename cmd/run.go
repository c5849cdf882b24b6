package cmd

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/global"
	"github.com/haierkeys/murverse-service/pkg/fileurl"
	"github.com/haierkeys/murverse-service/pkg/util"
)

// defaultConfigPath 找不到配置文件时在此处生成
const defaultConfigPath = "config/config.yaml"

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

// resolveConfig 按顺序查找配置文件，都不存在时写入内置的默认配置
func resolveConfig() (string, error) {
	if p := fileurl.FirstExist("config/config-dev.yaml", "config.yaml", defaultConfigPath, global.ROOT+defaultConfigPath); p != "" {
		return p, nil
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	content := strings.Replace(configDefault, "murverse-Auth-Token", util.GetRandomString(32), 1)
	if err := fileurl.WriteNew(defaultConfigPath, []byte(content), 0o600); err != nil && !errors.Is(err, os.ErrExist) {
		return "", err
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", defaultConfigPath))
	return defaultConfigPath, nil
}

// serverHolder 配置热重载时替换当前 Server
type serverHolder struct {
	mu sync.Mutex
	s  *Server
}

func (h *serverHolder) get() *Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

// reload 关闭旧的 Server 并按新配置启动，失败时保留已关闭状态并返回错误
func (h *serverHolder) reload(runEnv *runFlags) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.s.sc.SendCloseSignal(nil)
	if err := h.s.sc.WaitClosed(); err != nil {
		h.s.logger.Warn("previous server closed with error", zap.Error(err))
	}

	s, err := NewServer(runEnv)
	if err != nil {
		return err
	}
	h.s = s
	return nil
}

func watchConfig(holder *serverHolder, runEnv *runFlags) {
	w := watcher.New()

	// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
	w.SetMaxEvents(1)

	// 只通知写入事件。
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				holder.get().logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				if err := holder.reload(runEnv); err != nil {
					bootstrapLogger.Error("service restart err", zap.Error(err))
				}
			case err := <-w.Error:
				bootstrapLogger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		bootstrapLogger.Error("config watcher file error", zap.Error(err))
		return
	}

	if err := w.Start(time.Second * 5); err != nil {
		bootstrapLogger.Error("config watcher start error", zap.Error(err))
	}
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				path, err := resolveConfig()
				if err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				runEnv.config = path
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}
			holder := &serverHolder{s: s}

			go watchConfig(holder, runEnv)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			s = holder.get()
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.sc.SendCloseSignal(nil)

			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
