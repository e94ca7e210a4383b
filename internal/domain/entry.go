package domain

import (
	"path/filepath"
	"strings"
)

// FileEntry 描述一次枚举得到的待整理文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - Path 必须是 clean + absolute
// - 枚举阶段只做 stat；文件内容只允许在探测阶段读取一次前缀
type FileEntry struct {
	Path string
	Name string // 文件名（含扩展名）
	Ext  string // 小写声明扩展名，不含点；无扩展名为 ""
	Self bool   // 是否为正在运行的 sortify 可执行文件本体
}

// ExtOf 从文件名中提取声明扩展名（小写、不含点）。
// 约定与分类表一致：
// - 无点或以点结尾（"name."）→ ""
// - 以点开头且没有第二个点（".gitignore"）→ ""，点文件整体是文件名而非扩展名
func ExtOf(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}
