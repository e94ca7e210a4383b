//go:build !unix

package fsx

// Windows 的 MoveFileEx 不产生 EXDEV 语义的错误码，这里不做识别。
func isEXDEV(err error) bool {
	return false
}
