// Package fileurl 文件路径相关的辅助函数
package fileurl

import (
	"os"
	"path/filepath"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil
}

// FirstExist 返回第一个存在的路径，都不存在时返回空字符串
func FirstExist(paths ...string) string {
	for _, p := range paths {
		if p != "" && IsExist(p) {
			return p
		}
	}
	return ""
}

// CreatePath creates the parent directory of dst
// CreatePath 创建文件所在的目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// WriteNew 创建文件并写入内容，文件已存在时返回 os.ErrExist
func WriteNew(dst string, content []byte, perm os.FileMode) error {
	if err := CreatePath(dst, os.ModePerm); err != nil {
		return err
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetExePath gets the directory of the running binary
// GetExePath 获取当前执行文件所在目录
func GetExePath() string {
	exe, err := os.Executable()
	if err != nil {
		dir, _ := os.Getwd()
		return dir
	}
	if real, err := filepath.EvalSymlinks(exe); err == nil {
		exe = real
	}
	return filepath.Dir(exe)
}
