//go:build unix

package fsx

import (
	"errors"
	"syscall"
)

// isEXDEV 识别跨文件系统 rename 的失败：
// *os.LinkError 实现 Unwrap，errors.Is 沿链即可命中 syscall.EXDEV。
func isEXDEV(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
