package global

import (
	"fmt"
	"path/filepath"
	"runtime"

	dumpx "github.com/gookit/goutil/dump"
)

// Dump prints the caller location followed by a structured dump of a.
// CLI 的 --dump 输出走这里
func Dump(a ...any) {
	if _, file, line, ok := runtime.Caller(1); ok {
		fmt.Printf("\033[32m%s:%d\033[0m\n", filepath.Base(file), line)
	}
	dumpx.P(a...)
}
