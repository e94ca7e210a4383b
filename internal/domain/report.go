package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const (
	FileStatusMoved   = "moved"
	FileStatusPlanned = "planned"
	FileStatusSkipped = "skipped"
)

// RunReport 是对外稳定输出（stdout JSON / report.json）的结构。
type RunReport struct {
	Path    string `json:"path"`
	DryRun  bool   `json:"dry_run"`
	ExtOnly bool   `json:"ext_only"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary  ReportSummary `json:"summary"`
	Files    []FileResult  `json:"files"`
	Warnings []string      `json:"warnings"`
}

type ReportSummary struct {
	Total      int `json:"total"`
	Moved      int `json:"moved"`
	Planned    int `json:"planned"`
	Skipped    int `json:"skipped"`
	Mismatches int `json:"mismatches"`
	Warnings   int `json:"warnings"`
}

// FileResult 是单个文件的最终结论。
type FileResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`

	Category string `json:"category"` // 目录名（moved/planned 时非空）
	Dest     string `json:"dest"`     // 相对目标路径（moved/planned 时非空）

	// 冲突对：签名类型 / 声明扩展名。只在记录冲突时非空。
	Detected string `json:"detected"`
	Declared string `json:"declared"`

	SkipReason string `json:"skip_reason"`
}

// Finalize 做四件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) files 稳定排序：按文件名字典序
// 3) summary 由 files 计算得出
// 4) warnings 由 files 重建（冲突对 + 演练模式的二进制跳过），保证与明细一致
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Files, func(i, j int) bool {
		return r.Files[i].Name < r.Files[j].Name
	})

	var s ReportSummary
	warnings := make([]string, 0)
	for _, f := range r.Files {
		s.Total++
		switch f.Status {
		case FileStatusMoved:
			s.Moved++
		case FileStatusPlanned:
			s.Planned++
		case FileStatusSkipped:
			s.Skipped++
		}
		if f.Detected != "" && f.Declared != "" {
			s.Mismatches++
			warnings = append(warnings, fmt.Sprintf("签名与扩展名不符：%s（签名 .%s / 扩展名 .%s）", f.Name, f.Detected, f.Declared))
		}
		if f.SkipReason == SkipReasonBinaryDryRun {
			warnings = append(warnings, fmt.Sprintf("检测到二进制文件：%s", f.Name))
		}
	}
	s.Warnings = len(warnings)
	r.Summary = s
	r.Warnings = warnings
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
