package util

import (
	"os"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

// machineAppID 派生本机标识时使用的应用名，避免直接暴露原始 machine-id
const machineAppID = "murverse"

var (
	machineOnce sync.Once
	machineID   string
)

// GetMachineID returns a stable per-host identifier mixed into token signing keys.
// GetMachineID 返回本机的稳定标识，用于混入 token 签名密钥
// 依次尝试 machineid、主板序列号、主机名，全部失败时返回空字符串
func GetMachineID() string {
	machineOnce.Do(func() {
		if id, err := machineid.ProtectedID(machineAppID); err == nil && id != "" {
			machineID = id
			return
		}
		if b, err := os.ReadFile("/sys/class/dmi/id/board_serial"); err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				machineID = id
				return
			}
		}
		machineID, _ = os.Hostname()
	})
	return machineID
}
