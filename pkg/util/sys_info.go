package util

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// GetOSPrettyName returns a readable OS name for the admin system-info page.
// GetOSPrettyName 返回可读的操作系统名称，Linux 优先取 /etc/os-release 的 PRETTY_NAME
func GetOSPrettyName() string {
	if runtime.GOOS == "linux" {
		if name := osReleaseName("/etc/os-release"); name != "" {
			return name
		}
	}
	platform, _, version, err := host.PlatformInformation()
	if err != nil || platform == "" {
		return runtime.GOOS
	}
	return strings.TrimSpace(platform + " " + version)
}

func osReleaseName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if v, ok := strings.CutPrefix(scanner.Text(), "PRETTY_NAME="); ok {
			return strings.Trim(v, `"'`)
		}
	}
	return ""
}
