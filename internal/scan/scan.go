package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/John-Robertt/sortify/internal/domain"
)

// Collect 枚举 root 的直接子文件（不递归），并应用排除规则。
//
// 规则（硬约束）：
// - 只收集常规文件：子目录、符号链接等一律跳过
// - 永久排除：sortify.toml 与 .sortify.lock（工具自身的辅助文件）
// - excludes：来自配置文件的 glob 模式，按文件名匹配
// - selfPath：若某文件就是正在运行的可执行文件（canonical 路径相等），
//   标记 Self=true 而不是剔除，由上层决定如何呈现
//
// 注意：枚举阶段只做 stat，不读文件内容。
func Collect(root string, selfPath string, excludes []glob.Glob) ([]domain.FileEntry, error) {
	root = filepath.Clean(root)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败 %s：%w", root, err)
	}

	// os.ReadDir 已按文件名排序，天然满足稳定输出要求。
	files := make([]domain.FileEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if name == "sortify.toml" || name == ".sortify.lock" {
			continue
		}
		if matchAny(excludes, name) {
			continue
		}

		abs := filepath.Join(root, name)
		files = append(files, domain.FileEntry{
			Path: abs,
			Name: name,
			Ext:  domain.ExtOf(name),
			Self: isSelf(abs, selfPath),
		})
	}
	return files, nil
}

func matchAny(excludes []glob.Glob, name string) bool {
	for _, g := range excludes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// isSelf 判断 abs 是否就是正在运行的可执行文件。
// selfPath 由调用方预先 canonicalize；比较前对 abs 做同样处理。
// canonicalize 失败按“不是自身”处理，不阻断枚举。
func isSelf(abs, selfPath string) bool {
	if selfPath == "" {
		return false
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return false
	}
	return canon == selfPath
}
