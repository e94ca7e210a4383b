package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/sortify/internal/app/run"
	"github.com/John-Robertt/sortify/internal/config"
	"github.com/John-Robertt/sortify/internal/domain"
	"github.com/John-Robertt/sortify/internal/prompt"
)

func newRootCommand() *cobra.Command {
	var (
		extOnly       bool
		dryRun        bool
		noUpdateCheck bool
		prerelease    bool
	)

	cmd := &cobra.Command{
		Use:           "sortify [path]",
		Short:         "按内容签名把目录中的文件整理进分类子目录",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			// Changed 追踪让 --dry-run=false 能反向覆盖配置文件里的 dry_run=true。
			cli := config.CLIArgs{
				Path:          path,
				ExtOnly:       extOnly,
				ExtOnlySet:    cmd.Flags().Changed("ext-only"),
				DryRun:        dryRun,
				DryRunSet:     cmd.Flags().Changed("dry-run"),
				NoUpdateCheck: noUpdateCheck,
				Prerelease:    prerelease,
			}
			return runSortify(cmd.Context(), cli)
		},
	}

	cmd.Flags().BoolVar(&extOnly, "ext-only", false, "只按扩展名整理（完全不读文件内容）")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "演练模式：只汇报将要移动什么，不落任何文件")
	cmd.Flags().BoolVar(&noUpdateCheck, "no-update-check", false, "跳过启动时的更新检查")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "更新检查使用预发布渠道")

	return cmd
}

func runSortify(ctx context.Context, cli config.CLIArgs) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("读取当前目录失败：%w", err)
	}
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return err
	}

	// 过程输出（banner/进度/询问/更新提示）全部走 stderr，stdout 只留给报告。
	interactive := isTerminal(os.Stderr)
	if interactive {
		printBanner(os.Stderr)
	}
	maybeCheckUpdate(ctx, eff, interactive, os.Stderr)

	var obs run.Observer
	if interactive {
		obs = newProgressUI(os.Stderr)
	}

	rr, err := run.ExecuteWithObserver(ctx, eff, prompt.NewTerminal(os.Stdin, os.Stderr), obs)
	if err != nil {
		return err
	}

	emitReport(os.Stdout, os.Stderr, rr)
	return nil
}

// printBanner 只在交互终端出现，永远不进入 stdout 的 JSON 流。
func printBanner(w io.Writer) {
	title := "[ Sortify ]"
	tagline := "→ A lightweight utility for organizing files\n---------------------------------------------"
	if shouldColorize(w) {
		title = text.Colors{text.FgHiCyan, text.Bold}.Sprint(title)
		tagline = text.Faint.Sprint(tagline)
	}
	fmt.Fprintf(w, "%s v%s\n%s\n", title, version, tagline)
}

// emitReport 维持对外契约：stdout 是 TTY 时输出人类可读汇总；
// 否则 stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
func emitReport(stdout, stderr *os.File, rr domain.RunReport) {
	if isTerminal(stdout) {
		fmt.Fprint(stdout, renderSummary(rr, shouldColorize(stdout)))
		return
	}

	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(stderr, "完成：moved=%d planned=%d skipped=%d mismatches=%d warnings=%d\n",
		rr.Summary.Moved, rr.Summary.Planned, rr.Summary.Skipped,
		rr.Summary.Mismatches, rr.Summary.Warnings,
	)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(f)
}
