package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/sortify/internal/infra/fsx"
)

// Store 提供用户级缓存目录（<UserCacheDir>/sortify/）下的文件读写。
// 缓存只存字节，内容的解析与新鲜度判断由调用方负责。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true），保证 dry-run 不落任何文件
// - 正常运行：允许写（ReadOnly=false）
type Store struct {
	Root     string
	ReadOnly bool
}

var (
	ErrReadOnly = errors.New("cache: read-only")
	// ErrUnavailable 表示无法定位用户缓存目录（Root 为空）。
	ErrUnavailable = errors.New("cache: unavailable")
)

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// DefaultRoot 返回当前用户的缓存根目录。
func DefaultRoot() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "sortify"), nil
}

// UpdateCheckPath 返回更新检查记录的绝对路径。
func (s Store) UpdateCheckPath() string {
	return filepath.Join(s.Root, "update_check.json")
}

// ReportPath 返回最近一次运行报告的绝对路径。
func (s Store) ReportPath() string {
	return filepath.Join(s.Root, "report.json")
}

// ReadUpdateCheck 读取更新检查记录原文。
// 返回值 ok 表示是否命中（不存在不算错误）。
func (s Store) ReadUpdateCheck() ([]byte, bool, error) {
	return s.read(s.UpdateCheckPath())
}

func (s Store) WriteUpdateCheck(b []byte) error {
	return s.write("update_check.json", b)
}

func (s Store) WriteReport(b []byte) error {
	return s.write("report.json", b)
}

func (s Store) read(path string) ([]byte, bool, error) {
	if s.unavailable() {
		return nil, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) write(name string, b []byte) error {
	if s.unavailable() {
		return ErrUnavailable
	}
	if s.ReadOnly {
		return ErrReadOnly
	}
	return fsx.WriteFileAtomic(s.Root, name, b)
}

func (s Store) unavailable() bool {
	// filepath.Clean("") == "."，这里统一判空串与 "."。
	return s.Root == "" || s.Root == "."
}
