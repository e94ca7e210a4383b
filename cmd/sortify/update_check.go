package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/sortify/internal/config"
	"github.com/John-Robertt/sortify/internal/infra/cache"
	"github.com/John-Robertt/sortify/internal/infra/httpx"
	"github.com/John-Robertt/sortify/internal/update"
)

// maybeCheckUpdate 做启动时的更新检查。
//
// 只在交互终端且配置允许时联网（非交互运行绝不碰网络）；开发构建
// （version=dev）没有可比较的版本号，直接跳过。任何失败都降级为
// 一行提示，绝不影响整理本身。
func maybeCheckUpdate(ctx context.Context, eff config.EffectiveConfig, interactive bool, w io.Writer) {
	if !interactive || !eff.UpdateCheck || version == "dev" {
		return
	}

	root, err := cache.DefaultRoot()
	if err != nil {
		root = "" // 缓存不可用时照常检查，只是没有记录可复用
	}
	// dry-run 连更新检查记录都不写，只读已有缓存。
	store := cache.New(root, eff.DryRun)

	res, err := update.Check(ctx, update.DefaultSources(eff.Prerelease), update.Options{
		CurrentVersion: version,
		Prerelease:     eff.Prerelease,
		TTL:            time.Duration(eff.CacheTTLHours) * time.Hour,
		Store:          store,
		Client:         httpx.NewClient(update.UserAgent + "/" + version),
	})
	if err != nil {
		line := "更新检查失败：" + err.Error()
		if shouldColorize(w) {
			line = text.Faint.Sprint(line)
		}
		fmt.Fprintln(w, line)
		return
	}
	if res.UpToDate {
		return
	}

	fmt.Fprint(w, updateNotice(res, version, shouldColorize(w)))
}

// updateNotice 渲染“发现新版本”的提示块（纯函数，便于测试）。
func updateNotice(res update.Result, current string, colorize bool) string {
	head := fmt.Sprintf("发现新版本：%s（当前 v%s）", res.Tag, trimV(current))
	if colorize {
		head = text.FgYellow.Sprint(head)
	}
	out := head + "\n"
	if res.AssetURL != "" {
		out += "下载：" + res.AssetURL + "\n"
	}
	return out + "\n"
}

func trimV(v string) string {
	if len(v) > 0 && (v[0] == 'v' || v[0] == 'V') {
		return v[1:]
	}
	return v
}
