// Package fsx 封装整理动作依赖的文件系统原语：同盘移动与原子写。
package fsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// 通过可替换的函数指针，让测试能稳定模拟 EXDEV 等错误。
var renameFunc = os.Rename

// DirConflictError 表示分类目录的位置被同名的非目录占用。
type DirConflictError struct {
	Path string
	Got  string
}

func (e *DirConflictError) Error() string {
	return fmt.Sprintf("分类目录被占用：%q 已存在且是 %s，请先移走同名文件", e.Path, e.Got)
}

func IsDirConflict(err error) bool {
	var e *DirConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示源与目标不在同一文件系统（EXDEV）。
// 整理只做同盘 rename：跨盘时中止该次运行，不退化为复制后删除。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨文件系统移动（EXDEV）：%q -> %q；请把整理目录与分类目录放在同一文件系统上：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨盘（EXDEV）错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Move 把 src 移动到 dst（同一文件系统内的 rename）。
// EXDEV 显式标记为 CrossDeviceError，其余错误原样返回。
func Move(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// EnsureDir 确保 dir 存在且是目录（分类目录按需创建）。
// 若路径已存在但不是目录，返回 DirConflictError。
func EnsureDir(dir string) error {
	fi, err := os.Lstat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		got := "普通文件"
		if !fi.Mode().IsRegular() {
			got = fi.Mode().Type().String()
		}
		return &DirConflictError{Path: dir, Got: got}
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteFileAtomic 在 dir 下原子写入 name：写同目录临时文件再 rename 到位，
// 目标已存在则覆盖。用于 cache/report 等可重建的内部状态文件。
//
// 临时文件必须与目标同目录，rename 才是原子替换；临时文件 fsync 后再 rename，
// 目录本身的 fsync 按 best-effort 处理（平台间语义差异太大，失败不视为写入失败）。
func WriteFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	// 前缀带 '.'：半成品不出现在用户看到的目录列表里。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := Move(tmpName, dst); err != nil {
		return err
	}

	// rename 成功后临时文件已成为最终文件，defer 里的 Remove 自然落空。
	syncDir(dir)
	return nil
}

func syncDir(dir string) {
	// Windows 上目录 Sync 的语义与支持情况不稳定，直接跳过。
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
