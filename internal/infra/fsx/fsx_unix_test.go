//go:build unix

package fsx

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
)

func stubRename(t *testing.T, errno syscall.Errno) {
	t.Helper()
	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errno}
	}
	t.Cleanup(func() { renameFunc = old })
}

func TestMove_EXDEVBecomesCrossDeviceError(t *testing.T) {
	stubRename(t, syscall.EXDEV)

	err := Move("/mnt/a/notes.txt", "/mnt/b/Documents/notes.txt")
	if !IsCrossDevice(err) {
		t.Fatalf("期望 CrossDeviceError，实际：%T %v", err, err)
	}
	// Unwrap 链必须保留底层 errno，调用方仍可用 errors.Is 判断。
	if !errors.Is(err, syscall.EXDEV) {
		t.Fatalf("期望沿 Unwrap 命中 EXDEV：%v", err)
	}
	if !strings.Contains(err.Error(), "/mnt/a/notes.txt") || !strings.Contains(err.Error(), "/mnt/b/Documents/notes.txt") {
		t.Fatalf("错误信息应包含完整的源与目标路径：%v", err)
	}
}

func TestMove_OtherLinkErrorPassesThrough(t *testing.T) {
	stubRename(t, syscall.EACCES)

	err := Move("/a", "/b")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if IsCrossDevice(err) {
		t.Fatalf("EACCES 不应被标记为跨盘错误：%v", err)
	}
}
