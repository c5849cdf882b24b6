package global

import (
	"github.com/haierkeys/murverse-service/pkg/fileurl"
)

// ROOT 可执行文件所在目录，带结尾分隔符；首次运行时默认配置写在这里
var ROOT = fileurl.GetExePath() + "/"
