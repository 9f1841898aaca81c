package utils

import (
	"os"
	"path/filepath"
)

// RootEnv 指定项目根目录，未设置时从工作目录向上查找 go.mod
const RootEnv = "GSMS_ROOT"

// GetAbsPath 将相对项目根目录的路径转为绝对路径，已是绝对路径时原样返回
func GetAbsPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(ProjectRoot(), rel)
}

// ProjectRoot 找不到 go.mod 时返回工作目录
func ProjectRoot() string {
	if root := os.Getenv(RootEnv); root != "" {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}
		dir = parent
	}
}
