package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEffective_MissingConfigIsFine(t *testing.T) {
	dir := t.TempDir()

	eff, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != dir {
		t.Fatalf("期望 path=%q，实际=%q", dir, eff.Path)
	}
	if eff.ExtOnly || eff.DryRun {
		t.Fatalf("期望 ext_only/dry_run 均为 false，实际=%v/%v", eff.ExtOnly, eff.DryRun)
	}
	if eff.Concurrency != DefaultConcurrency {
		t.Fatalf("期望 concurrency=%d，实际=%d", DefaultConcurrency, eff.Concurrency)
	}
	if !eff.UpdateCheck {
		t.Fatalf("期望 update_check=true，实际=%v", eff.UpdateCheck)
	}
	if eff.CacheTTLHours != DefaultCacheTTLHours {
		t.Fatalf("期望 cache_ttl_hours=%d，实际=%d", DefaultCacheTTLHours, eff.CacheTTLHours)
	}
}

func TestLoadEffective_DryRunCLIOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("dry_run = true\n"))

	eff, err := LoadEffective(dir, CLIArgs{
		DryRun:    false,
		DryRunSet: true, // --dry-run=false
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.DryRun != false {
		t.Fatalf("期望 dry_run=false，实际=%v", eff.DryRun)
	}
}

func TestLoadEffective_ExtOnlyMergeOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("ext_only = true\n"))

	// CLI 未指定 ext_only，则应使用配置文件中的 true。
	eff, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !eff.ExtOnly {
		t.Fatalf("期望 ext_only=true，实际=%v", eff.ExtOnly)
	}

	// CLI 显式指定，则覆盖配置文件。
	eff2, err := LoadEffective(dir, CLIArgs{
		ExtOnly:    false,
		ExtOnlySet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff2.ExtOnly {
		t.Fatalf("期望 ext_only=false，实际=%v", eff2.ExtOnly)
	}
}

func TestLoadEffective_CLIPathRelativeToCwd(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "inbox")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	eff, err := LoadEffective(cwd, CLIArgs{Path: "inbox"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != root {
		t.Fatalf("期望 path=%q，实际=%q", root, eff.Path)
	}
}

func TestLoadEffective_PathMustBeDirectory(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{Path: "missing"})
	if Code(err) != ErrCodePathInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodePathInvalid, err, Code(err))
	}

	file := filepath.Join(cwd, "a.txt")
	writeFile(t, file, []byte("x"))
	_, err = LoadEffective(cwd, CLIArgs{Path: file})
	if Code(err) != ErrCodePathInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodePathInvalid, err, Code(err))
	}
}

func TestLoadEffective_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("dry_run = [\n"))

	_, err := LoadEffective(dir, CLIArgs{})
	if Code(err) != ErrCodeParse {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeParse, err, Code(err))
	}
}

func TestLoadEffective_BadExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("exclude = [\"[\"]\n"))

	_, err := LoadEffective(dir, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_ExcludeCompiled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("exclude = [\"*.tmp\", \"draft-*\"]\n"))

	eff, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(eff.Exclude) != 2 || len(eff.ExcludePatterns) != 2 {
		t.Fatalf("期望编译 2 个排除模式，实际=%d/%d", len(eff.Exclude), len(eff.ExcludePatterns))
	}
	if !eff.Exclude[0].Match("a.tmp") {
		t.Fatalf("期望 *.tmp 匹配 a.tmp")
	}
	if eff.Exclude[1].Match("a.tmp") {
		t.Fatalf("不期望 draft-* 匹配 a.tmp")
	}
}

func TestLoadEffective_ConcurrencyClamped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("concurrency = 99\n"))

	eff, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Concurrency != 32 {
		t.Fatalf("期望 concurrency=32，实际=%d", eff.Concurrency)
	}

	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("concurrency = -3\n"))
	eff2, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff2.Concurrency != 1 {
		t.Fatalf("期望 concurrency=1，实际=%d", eff2.Concurrency)
	}
}

func TestLoadEffective_UpdatesMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("[updates]\ncheck = true\nprerelease = true\ncache_ttl_hours = 10000\n"))

	eff, err := LoadEffective(dir, CLIArgs{NoUpdateCheck: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// --no-update-check 强制关闭，即便配置打开。
	if eff.UpdateCheck {
		t.Fatalf("期望 update_check=false，实际=%v", eff.UpdateCheck)
	}
	if !eff.Prerelease {
		t.Fatalf("期望 prerelease=true，实际=%v", eff.Prerelease)
	}
	if eff.CacheTTLHours != 720 {
		t.Fatalf("期望 cache_ttl_hours=720，实际=%d", eff.CacheTTLHours)
	}

	// 配置关闭时无需 CLI 参数也应关闭。
	writeFile(t, filepath.Join(dir, "sortify.toml"), []byte("[updates]\ncheck = false\n"))
	eff2, err := LoadEffective(dir, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff2.UpdateCheck {
		t.Fatalf("期望 update_check=false，实际=%v", eff2.UpdateCheck)
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
