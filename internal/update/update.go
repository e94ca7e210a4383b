// Package update 实现启动时的新版本检查。
//
// 结构仿照“多来源 + 顺序回退”的抓取流程：API 优先，网页解析兜底；
// 任何失败都不影响主流程（由调用方决定如何呈现）。
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/John-Robertt/sortify/internal/infra/cache"
)

const (
	// RepoOwner/RepoName 是发布仓库的固定坐标。
	RepoOwner = "John-Robertt"
	RepoName  = "sortify"

	// UserAgent 是更新检查请求的固定 UA（GitHub API 要求非空 UA）。
	UserAgent = "sortify-updater"
)

// Release 是一次发布的最小描述（与来源无关）。
type Release struct {
	Tag        string // 形如 v1.4.0
	Prerelease bool
	PageURL    string // release 页面（资产缺失时的回退链接）
	Assets     []Asset
}

type Asset struct {
	Name string
	URL  string
}

// Source 把“发布渠道变化”限制在来源内部；检查流程只依赖统一接口。
//
// 约束：
// - Fetch 不做缓存、不做重试（网络重试由 httpx 统一实现）
// - Parse 必须是纯函数：相同输入 => 相同输出
type Source interface {
	Name() string
	Fetch(ctx context.Context, c *http.Client) ([]byte, error)
	Parse(raw []byte) (Release, error)
}

// DefaultSources 返回按优先级排列的来源：API 优先，网页解析兜底。
func DefaultSources(prerelease bool) []Source {
	return []Source{
		APISource{Owner: RepoOwner, Repo: RepoName, Prerelease: prerelease},
		WebSource{Owner: RepoOwner, Repo: RepoName, Prerelease: prerelease},
	}
}

// Error 是更新检查阶段的可追溯错误。
type Error struct {
	Source string // 来源 name（api/web）
	Stage  string // "fetch" 或 "parse"
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source=%s stage=%s: %v", e.Source, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError 表示来源返回了非 2xx 的 HTTP 状态码。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d（%s）", e.StatusCode, e.URL)
}

// CheckRecord 是写入用户缓存的检查结果（带渠道与时间戳，供 TTL 判断）。
type CheckRecord struct {
	CheckedAt time.Time `json:"checked_at"`
	Channel   string    `json:"channel"`
	Tag       string    `json:"tag"`
	AssetURL  string    `json:"asset_url"`
}

// Options 控制一次检查的输入。
type Options struct {
	// CurrentVersion 形如 v1.3.0（容忍缺失 v 前缀）。
	CurrentVersion string
	Prerelease     bool

	// TTL 内的缓存记录直接复用，不联网；<=0 表示每次都联网。
	TTL   time.Duration
	Store cache.Store

	Client *http.Client

	// Now 供测试注入；nil 则使用 time.Now。
	Now func() time.Time
}

// Result 是一次检查的结论。
type Result struct {
	Tag       string
	AssetURL  string
	UpToDate  bool
	FromCache bool
}

// Check 依次尝试各来源，取第一个成功解析的 release 与当前版本比较。
//
// 缓存规则：
// - 命中同渠道且未过期的记录：直接复用，不联网
// - 联网成功后写回记录（写失败不影响结论）
func Check(ctx context.Context, sources []Source, opts Options) (Result, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	channel := channelName(opts.Prerelease)
	if rec, ok := readFreshRecord(opts.Store, channel, now(), opts.TTL); ok {
		return Result{
			Tag:       rec.Tag,
			AssetURL:  rec.AssetURL,
			UpToDate:  !newer(rec.Tag, opts.CurrentVersion),
			FromCache: true,
		}, nil
	}

	rel, err := fetchParse(ctx, sources, opts.Client)
	if err != nil {
		return Result{}, err
	}

	assetURL := ""
	if suffix, ok := AssetSuffix(); ok {
		assetURL = pickAsset(rel.Assets, suffix)
	}
	if assetURL == "" {
		// 没有适配资产（平台未覆盖或来源无资产清单）：退回 release 页面链接。
		assetURL = rel.PageURL
	}

	writeRecord(opts.Store, CheckRecord{
		CheckedAt: now().UTC(),
		Channel:   channel,
		Tag:       rel.Tag,
		AssetURL:  assetURL,
	})

	return Result{
		Tag:      rel.Tag,
		AssetURL: assetURL,
		UpToDate: !newer(rel.Tag, opts.CurrentVersion),
	}, nil
}

func fetchParse(ctx context.Context, sources []Source, c *http.Client) (Release, error) {
	if len(sources) == 0 {
		return Release{}, errors.New("无可用更新来源")
	}

	var lastErr error
	for _, s := range sources {
		raw, err := s.Fetch(ctx, c)
		if err != nil {
			lastErr = &Error{Source: s.Name(), Stage: "fetch", Err: err}
			continue
		}
		rel, err := s.Parse(raw)
		if err != nil {
			lastErr = &Error{Source: s.Name(), Stage: "parse", Err: err}
			continue
		}
		return rel, nil
	}
	return Release{}, lastErr
}

func channelName(prerelease bool) string {
	if prerelease {
		return "prerelease"
	}
	return "stable"
}

// newer 判断 latest 是否严格新于 current。
// 任一版本无法按 semver 解析时保守判定为“不更新”，避免误报。
func newer(latestTag, currentVersion string) bool {
	l := normalizeTag(latestTag)
	c := normalizeTag(currentVersion)
	if !semver.IsValid(l) || !semver.IsValid(c) {
		return false
	}
	return semver.Compare(l, c) > 0
}

func normalizeTag(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}

func pickAsset(assets []Asset, suffix string) string {
	for _, a := range assets {
		if strings.HasSuffix(a.Name, suffix) {
			return a.URL
		}
	}
	return ""
}

func readFreshRecord(s cache.Store, channel string, now time.Time, ttl time.Duration) (CheckRecord, bool) {
	if ttl <= 0 {
		return CheckRecord{}, false
	}
	b, ok, err := s.ReadUpdateCheck()
	if err != nil || !ok {
		return CheckRecord{}, false
	}
	var rec CheckRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		// 缓存损坏：当作未命中，照常联网检查。
		return CheckRecord{}, false
	}
	if rec.Channel != channel || rec.Tag == "" {
		return CheckRecord{}, false
	}
	if rec.CheckedAt.IsZero() || now.Sub(rec.CheckedAt) >= ttl {
		return CheckRecord{}, false
	}
	return rec, true
}

func writeRecord(s cache.Store, rec CheckRecord) {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return
	}
	// 写失败不影响检查结论（dry-run 的只读缓存也会走到这里）。
	_ = s.WriteUpdateCheck(b)
}
