package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/sortify/internal/domain"
)

// renderSummary 生成交互终端的最终汇总（stdout 是 TTY 时使用）。
func renderSummary(rr domain.RunReport, colorize bool) string {
	var b strings.Builder

	if rr.Summary.Total == 0 {
		b.WriteString("目录中没有需要整理的文件。\n")
		return b.String()
	}

	moved := make([]domain.FileResult, 0, len(rr.Files))
	skipped := make([]domain.FileResult, 0)
	for _, f := range rr.Files {
		if f.Status == domain.FileStatusSkipped {
			skipped = append(skipped, f)
		} else {
			moved = append(moved, f)
		}
	}

	if len(moved) > 0 {
		title := "已移动"
		if rr.DryRun {
			title = "将要移动（dry-run）"
		}
		if colorize {
			title = text.Bold.Sprint(title)
		}
		b.WriteString(title + "\n")
		b.WriteString(renderFileTable(moved))
		b.WriteString("\n")
	}

	for _, f := range skipped {
		line := fmt.Sprintf("跳过 %s（%s）", f.Name, skipReasonText(f.SkipReason))
		if colorize {
			line = text.Faint.Sprint(line)
		}
		b.WriteString(line + "\n")
	}

	for _, w := range rr.Warnings {
		line := "警告：" + w
		if colorize {
			line = text.FgYellow.Sprint(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(fmt.Sprintf("完成：moved=%d planned=%d skipped=%d mismatches=%d warnings=%d\n",
		rr.Summary.Moved, rr.Summary.Planned, rr.Summary.Skipped,
		rr.Summary.Mismatches, rr.Summary.Warnings,
	))
	return b.String()
}

// renderFileTable 把移动/计划条目渲染成圆角表格。
func renderFileTable(files []domain.FileResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"文件", "分类", "目标"})
	for _, f := range files {
		tw.AppendRow(table.Row{f.Name, f.Category, f.Dest})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
