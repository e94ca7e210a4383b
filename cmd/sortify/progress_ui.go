package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/sortify/internal/app/run"
	"github.com/John-Robertt/sortify/internal/config"
	"github.com/John-Robertt/sortify/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的过程输出，全部写 stderr（或退化的 stdout），
// 不污染 stdout 的 JSON 输出契约。
//
// 事件按 run.Observer 的契约串行送达：询问会阻塞批次，输出自然停在
// 当前行，因此这里不需要锁，也不需要后台心跳。
type progressUI struct {
	w        io.Writer
	colorize bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w, colorize: shouldColorize(w)}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	mode := "移动"
	if eff.DryRun {
		mode = "dry-run（只汇报，不移动任何文件）"
	}

	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s\n", mode)
	fmt.Fprintf(p.w, "  ext_only: %s\n", onOff(eff.ExtOnly))
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	if len(eff.ExcludePatterns) > 0 {
		fmt.Fprintf(p.w, "  exclude: %s + 固定排除 sortify.toml, .sortify.lock\n",
			strings.Join(eff.ExcludePatterns, ", "))
	} else {
		fmt.Fprintln(p.w, "  exclude: 固定排除 sortify.toml, .sortify.lock")
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: files=%d (%s)\n",
			intField(fields, "files"), formatShortDuration(dur))
	case "detect":
		fmt.Fprintf(p.w, "探测: sniffed=%d binaries=%d workers=%d (%s)\n",
			intField(fields, "sniffed"),
			intField(fields, "binaries"),
			intField(fields, "workers"),
			formatShortDuration(dur),
		)
	case "resolve":
		fmt.Fprintf(p.w, "裁决: files=%d\n\n", intField(fields, "files"))
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnFileDone(idx, total int, name string, res domain.FileResult, dur time.Duration) {
	note := ""
	if res.Detected != "" && res.Declared != "" {
		note = fmt.Sprintf(" 签名 .%s / 扩展名 .%s", res.Detected, res.Declared)
	}

	switch res.Status {
	case domain.FileStatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] %s %s（%s）%s (%s)\n",
			idx, total, name, p.paint("SKIP", text.FgYellow),
			skipReasonText(res.SkipReason), note, formatShortDuration(dur),
		)
	case domain.FileStatusPlanned:
		fmt.Fprintf(p.w, "[%d/%d] %s %s → %s%s (%s)\n",
			idx, total, name, p.paint("PLAN", text.FgCyan),
			res.Dest, note, formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s %s → %s%s (%s)\n",
			idx, total, name, p.paint("MOVE", text.FgGreen),
			res.Dest, note, formatShortDuration(dur),
		)
	}
}

func (p *progressUI) paint(s string, c text.Color) string {
	if !p.colorize {
		return s
	}
	return c.Sprint(s)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func skipReasonText(reason string) string {
	switch reason {
	case domain.SkipReasonSelf:
		return "程序自身"
	case domain.SkipReasonUserChoice:
		return "用户选择"
	case domain.SkipReasonBinaryPolicy:
		return "二进制策略"
	case domain.SkipReasonBinaryDryRun:
		return "二进制（演练）"
	default:
		return reason
	}
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
