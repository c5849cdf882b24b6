package api_router

import (
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dto"
	pkgapp "github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	apperrors "github.com/haierkeys/murverse-service/pkg/errors"
	"github.com/haierkeys/murverse-service/pkg/util"
)

// AdminHandler Administrative API router handler
// AdminHandler 管理员 API 路由处理器（备份管理与系统信息）
type AdminHandler struct {
	*Handler
}

// NewAdminHandler creates AdminHandler instance
// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(a *app.App) *AdminHandler {
	return &AdminHandler{Handler: NewHandler(a)}
}

// SystemInfo system information response structure
// SystemInfo 系统信息响应结构
type SystemInfo struct {
	StartTime     time.Time   `json:"startTime"`     // Start time // 启动时间
	Uptime        float64     `json:"uptime"`        // Uptime (seconds) // 运行时间（秒）
	RuntimeStatus RuntimeInfo `json:"runtimeStatus"` // Go runtime status // Go 运行时状态
	CPU           CPUInfo     `json:"cpu"`           // CPU information // CPU 信息
	Memory        MemoryInfo  `json:"memory"`        // Memory information // 内存信息
	Host          HostInfo    `json:"host"`          // Host information // 主机信息
	Process       ProcessInfo `json:"process"`       // Process information // 进程信息
	Workers       any         `json:"workers"`       // Worker pool stats // 工作池状态
}

// RuntimeInfo Go runtime status
// RuntimeInfo Go 运行时状态
type RuntimeInfo struct {
	NumGoroutine int    `json:"numGoroutine"` // Number of goroutines // Goroutine 数量
	MemAlloc     uint64 `json:"memAlloc"`     // Allocated memory (bytes) // 已分配内存（字节）
	MemSys       uint64 `json:"memSys"`       // Memory obtained from system (bytes) // 从系统获取的内存（字节）
	HeapInuse    uint64 `json:"heapInuse"`    // Memory in in-use spans (bytes) // 正在使用的 Span 占用的内存
	NextGC       uint64 `json:"nextGc"`       // Target heap size for the next GC cycle // 下次 GC 的目标堆大小
	NumGC        uint32 `json:"numGc"`        // Number of completed GC cycles // GC 次数
}

// CPUInfo CPU information
type CPUInfo struct {
	ModelName     string    `json:"modelName"`     // Model name // 型号
	PhysicalCores int       `json:"physicalCores"` // Physical cores // 物理核心数
	LogicalCores  int       `json:"logicalCores"`  // Logical cores // 逻辑核心数
	Percent       []float64 `json:"percent"`       // Usage percentage per core // 每个核心的使用率
	LoadAvg       *LoadInfo `json:"loadAvg"`       // Load average // 平均负载
}

type LoadInfo struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// MemoryInfo memory information
type MemoryInfo struct {
	Total       uint64  `json:"total"`       // Total physical memory // 系统总内存
	Available   uint64  `json:"available"`   // Available memory // 可用内存
	Used        uint64  `json:"used"`        // Used memory // 已用内存
	UsedPercent float64 `json:"usedPercent"` // Memory usage percentage // 内存使用率
}

// HostInfo host information
type HostInfo struct {
	Hostname      string `json:"hostname"`      // Hostname // 主机名
	OS            string `json:"os"`            // Operating system // 操作系统
	OSPretty      string `json:"osPretty"`      // Detailed OS name // 详细操作系统名称
	Platform      string `json:"platform"`      // Platform name // 平台
	Arch          string `json:"arch"`          // Architecture // 架构
	KernelVersion string `json:"kernelVersion"` // Kernel version // 内核版本
	Uptime        uint64 `json:"uptime"`        // System uptime // 系统运行时间
	TimeZone      string `json:"timezone"`      // Time zone name // 时区名称
}

type ProcessInfo struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float32 `json:"memoryPercent"`
}

// Check 当前用户是否管理员
// @Summary 管理员校验
// @Tags 管理
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.AdminCheckDTO} "成功"
// @Router /api/admin/check [get]
func (h *AdminHandler) Check(c *gin.Context) {
	uid := pkgapp.GetUID(c)
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.AdminCheckDTO{
		UID:     uid,
		IsAdmin: h.App.IsAdmin(uid),
	}))
}

// BackupList 分页获取删除备份
// @Summary 备份列表
// @Description 管理员接口，可按用户和内容关键字过滤
// @Tags 管理
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param params query dto.BackupListRequest false "过滤条件"
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.BackupDTO}} "成功"
// @Failure 403 {object} apperrors.AppError "需要管理员权限"
// @Router /api/admin/backups [get]
func (h *AdminHandler) BackupList(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.BackupListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	cfg := h.App.Config()
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSizeWithConfig(c, pkgapp.PaginationConfig{
		DefaultPageSize: cfg.App.DefaultPageSize,
		MaxPageSize:     cfg.App.MaxPageSize,
	})
	ctx := c.Request.Context()

	list, total, err := h.App.BackupService.List(ctx, params, page, pageSize)
	if err != nil {
		h.logError(ctx, "AdminHandler.BackupList", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponseList(code.Success, list, int(total))
}

// BackupRestore 恢复删除备份
// @Summary 恢复备份
// @Description 备份不存在返回 404，已过期返回 410，碎片 ID 已被占用返回 409
// @Tags 管理
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param id path int true "备份ID"
// @Success 200 {object} pkgapp.Res{data=dto.BackupRestoreDTO} "成功"
// @Failure 404 {object} apperrors.AppError "备份不存在"
// @Failure 409 {object} apperrors.AppError "碎片已存在"
// @Failure 410 {object} apperrors.AppError "备份已过期"
// @Router /api/admin/backups/{id}/restore [post]
func (h *AdminHandler) BackupRestore(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.BackupIDRequest{ID: cast.ToInt64(c.Param("id"))}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	result, err := h.App.BackupService.Restore(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "AdminHandler.BackupRestore", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessRestore.WithData(result))
}

// BackupCleanup 立即清理过期备份
// @Summary 清理过期备份
// @Tags 管理
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.BackupCleanupDTO} "成功"
// @Router /api/admin/backups/cleanup [post]
func (h *AdminHandler) BackupCleanup(c *gin.Context) {
	ctx := c.Request.Context()
	removed, err := h.App.BackupService.Cleanup(ctx)
	if err != nil {
		h.logError(ctx, "AdminHandler.BackupCleanup", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	h.App.Metrics.BackupsRemoved.Add(float64(removed))
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete.WithData(dto.BackupCleanupDTO{Removed: removed}))
}

// GetSystemInfo retrieves system and runtime information (requires admin privileges)
// @Summary 系统信息
// @Tags 管理
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=SystemInfo} "Success"
// @Router /api/admin/systeminfo [get]
func (h *AdminHandler) GetSystemInfo(c *gin.Context) {
	ctx := c.Request.Context()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	data := SystemInfo{
		StartTime: h.App.StartTime,
		Uptime:    time.Since(h.App.StartTime).Seconds(),
		RuntimeStatus: RuntimeInfo{
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     m.Alloc,
			MemSys:       m.Sys,
			HeapInuse:    m.HeapInuse,
			NextGC:       m.NextGC,
			NumGC:        m.NumGC,
		},
		CPU:     CPUInfo{LoadAvg: &LoadInfo{}},
		Workers: h.App.WorkerPool().Stats(),
	}

	// 各项采集互不依赖，单项失败只记录日志
	var g errgroup.Group
	g.Go(func() error {
		if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
			data.CPU.ModelName = infos[0].ModelName
		}
		data.CPU.PhysicalCores, _ = cpu.CountsWithContext(ctx, false)
		data.CPU.LogicalCores, _ = cpu.CountsWithContext(ctx, true)
		percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, true)
		data.CPU.Percent = percents
		return err
	})
	g.Go(func() error {
		avg, err := load.AvgWithContext(ctx)
		if err != nil {
			return err
		}
		data.CPU.LoadAvg = &LoadInfo{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
		return nil
	})
	g.Go(func() error {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return err
		}
		data.Memory = MemoryInfo{Total: vm.Total, Available: vm.Available, Used: vm.Used, UsedPercent: vm.UsedPercent}
		return nil
	})
	g.Go(func() error {
		info, err := host.InfoWithContext(ctx)
		if err != nil {
			return err
		}
		data.Host = HostInfo{
			Hostname:      info.Hostname,
			OS:            info.OS,
			OSPretty:      util.GetOSPrettyName(),
			Platform:      info.Platform,
			Arch:          info.KernelArch,
			KernelVersion: info.KernelVersion,
			Uptime:        info.Uptime,
			TimeZone:      time.Now().Location().String(),
		}
		return nil
	})
	g.Go(func() error {
		p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
		if err != nil {
			return err
		}
		data.Process.PID = p.Pid
		data.Process.Name, _ = p.NameWithContext(ctx)
		data.Process.CPUPercent, _ = p.CPUPercentWithContext(ctx)
		data.Process.MemoryPercent, _ = p.MemoryPercentWithContext(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		h.App.Logger().Warn("AdminHandler.GetSystemInfo partial", zap.Error(err))
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(data))
}
