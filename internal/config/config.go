// Package config 负责配置装载：解析目标目录、读取其中可选的
// sortify.toml，并与 CLI 参数合并为最终配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"
)

const (
	// ErrCodeRead 表示配置文件存在但读取失败。
	ErrCodeRead = "config_read"
	// ErrCodeParse 表示配置文件不是合法 TOML。
	ErrCodeParse = "config_parse"
	// ErrCodeInvalid 表示配置字段语义不合法（例如 exclude 模式编译失败）。
	ErrCodeInvalid = "config_invalid"
	// ErrCodePathInvalid 表示目标目录不存在或不是目录。
	ErrCodePathInvalid = "path_invalid"
)

const (
	// FileName 是目标目录下可选配置文件的固定名字。
	FileName = "sortify.toml"

	// DefaultConcurrency 是探测阶段并发的内置默认值（当配置未指定时）。
	DefaultConcurrency = 4
	// DefaultCacheTTLHours 是更新检查结果缓存的默认有效期（小时）。
	DefaultCacheTTLHours = 24
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --dry-run=false 必须能覆盖 config.dry_run=true。
type CLIArgs struct {
	Path string

	ExtOnly    bool
	ExtOnlySet bool

	DryRun    bool
	DryRunSet bool

	// NoUpdateCheck 与 Prerelease 是单向开关：CLI 只能朝一个方向推，
	// 反向仍由配置文件决定。
	NoUpdateCheck bool
	Prerelease    bool
}

// FileConfig 对应 sortify.toml 的解析结构。
type FileConfig struct {
	ExtOnly     *bool             `toml:"ext_only"`
	DryRun      *bool             `toml:"dry_run"`
	Concurrency int               `toml:"concurrency"`
	Exclude     []string          `toml:"exclude"`
	Updates     UpdatesFileConfig `toml:"updates"`
}

// UpdatesFileConfig 对应 [updates] 小节。
type UpdatesFileConfig struct {
	Check         *bool `toml:"check"`
	Prerelease    bool  `toml:"prerelease"`
	CacheTTLHours int   `toml:"cache_ttl_hours"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，
// 不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string

	ExtOnly bool
	DryRun  bool

	Concurrency int

	// Exclude 是已编译的排除模式；ExcludePatterns 保留原始串，用于展示。
	Exclude         []glob.Glob
	ExcludePatterns []string

	UpdateCheck   bool
	Prerelease    bool
	CacheTTLHours int
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodePathInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：目标目录 %q 不可用：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：目标目录 %q 不可用", e.Code, e.Path)
	case ErrCodeRead:
		return fmt.Sprintf("%s：配置文件 %q 读取失败：%v", e.Code, e.Path, e.Err)
	case ErrCodeParse:
		return fmt.Sprintf("%s：配置文件 %q 解析失败：%v", e.Code, e.Path, e.Err)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按固定规则发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// - 目标目录 = CLI path（缺省为 cwd），必须存在且是目录
// - 配置文件 = <目标目录>/sortify.toml，可选；不存在时全部走默认值
//
// 覆盖优先级（固定）：
// - ext_only / dry_run：CLI 显式指定 > config > 默认 false
// - updates.check：--no-update-check 强制关闭 > config > 默认 true
// - updates.prerelease：CLI 与 config 任一开启即生效
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodePathInvalid, Path: cwd, Err: err}
	}

	dir := cwdAbs
	if strings.TrimSpace(cli.Path) != "" {
		dir = absCleanFrom(cwdAbs, cli.Path)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodePathInvalid, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return EffectiveConfig{}, &Error{Code: ErrCodePathInvalid, Path: dir, Err: fmt.Errorf("不是目录")}
	}

	cfgPath := filepath.Join(dir, FileName)
	fc, code, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: code, Path: cfgPath, Err: err}
	}

	return merge(dir, cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// ext_only / dry_run：CLI > config > 默认 false
	extOnly := false
	if cli.ExtOnlySet {
		extOnly = cli.ExtOnly
	} else if fc.ExtOnly != nil {
		extOnly = *fc.ExtOnly
	}

	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围约定 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	patterns := make([]string, 0, len(fc.Exclude))
	globs := make([]glob.Glob, 0, len(fc.Exclude))
	for _, p := range fc.Exclude {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("exclude 模式无效 %q：%w", p, err)}
		}
		patterns = append(patterns, p)
		globs = append(globs, g)
	}

	check := true
	if fc.Updates.Check != nil {
		check = *fc.Updates.Check
	}
	if cli.NoUpdateCheck {
		check = false
	}

	ttl := fc.Updates.CacheTTLHours
	if ttl == 0 {
		ttl = DefaultCacheTTLHours
	}
	if ttl < 1 {
		ttl = 1
	}
	if ttl > 720 {
		ttl = 720
	}

	return EffectiveConfig{
		Path:            absPath,
		ExtOnly:         extOnly,
		DryRun:          dryRun,
		Concurrency:     concurrency,
		Exclude:         globs,
		ExcludePatterns: patterns,
		UpdateCheck:     check,
		Prerelease:      fc.Updates.Prerelease || cli.Prerelease,
		CacheTTLHours:   ttl,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件（不存在不算错误）。
// 出错时按失败阶段返回 error_code：读取失败 / 解析失败。
func readFileConfig(path string) (fc FileConfig, code string, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, "", nil
		}
		return FileConfig{}, ErrCodeRead, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, ErrCodeParse, err
	}
	return fc, "", nil
}
