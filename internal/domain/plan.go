package domain

// MovePlan 是计划阶段的产物：src/dst 供执行，Dest 供报告展示。
// dry-run 下只有 Dest 被用到，计划本身不落盘。
type MovePlan struct {
	Src string // 源文件绝对路径
	Dst string // 目标绝对路径（含冲突改名后的最终文件名）
	// Dest 是相对整理目录的展示路径（如 "Documents/notes.txt"），
	// 与 RunReport 里 files[].dest 字段一致。
	Dest string
}
