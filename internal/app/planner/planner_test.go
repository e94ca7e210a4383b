package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/John-Robertt/sortify/internal/classify"
)

func TestPlan_KeepsNameWhenFree(t *testing.T) {
	root := t.TempDir()

	p := New(root)
	plan, err := p.Plan(classify.Documents, filepath.Join(root, "report.pdf"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	wantDst := filepath.Join(root, "Documents", "report.pdf")
	if plan.Dst != wantDst {
		t.Fatalf("期望 dst=%q，实际=%q", wantDst, plan.Dst)
	}
	if plan.Src != filepath.Join(root, "report.pdf") {
		t.Fatalf("src 不符：%q", plan.Src)
	}
	if plan.Dest != filepath.Join("Documents", "report.pdf") {
		t.Fatalf("展示路径不符：%q", plan.Dest)
	}
}

func TestPlan_ConflictSequence(t *testing.T) {
	root := t.TempDir()

	// 分类目录已有同名与 _1，计划应生成 _2。
	write(t, filepath.Join(root, "Documents", "report.pdf"))
	write(t, filepath.Join(root, "Documents", "report_1.pdf"))

	p := New(root)
	plan, err := p.Plan(classify.Documents, filepath.Join(root, "report.pdf"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	wantDst := filepath.Join(root, "Documents", "report_2.pdf")
	if plan.Dst != wantDst {
		t.Fatalf("期望 dst=%q，实际=%q", wantDst, plan.Dst)
	}
	if plan.Dest != filepath.Join("Documents", "report_2.pdf") {
		t.Fatalf("展示路径应含改名后的文件名：%q", plan.Dest)
	}
}

func TestPlan_TracksNamesAllocatedInBatch(t *testing.T) {
	root := t.TempDir()

	// 磁盘上没有任何占用，但同一批内两次分配同名必须错开。
	p := New(root)
	first, err := p.Plan(classify.Pictures, filepath.Join(root, "photo.png"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	second, err := p.Plan(classify.Pictures, filepath.Join(root, "photo.png"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if first.Dst != filepath.Join(root, "Pictures", "photo.png") {
		t.Fatalf("第一次分配不符：%q", first.Dst)
	}
	if second.Dst != filepath.Join(root, "Pictures", "photo_1.png") {
		t.Fatalf("第二次分配不符：%q", second.Dst)
	}
}

func TestPlan_MismatchCategoryDir(t *testing.T) {
	root := t.TempDir()

	p := New(root)
	plan, err := p.Plan(classify.Mismatch, filepath.Join(root, "odd.bin"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if plan.Dst != filepath.Join(root, "Check manually", "odd.bin") {
		t.Fatalf("期望人工核对目录，实际=%q", plan.Dst)
	}
}

func TestAllocName_NoExtensionAndDotfile(t *testing.T) {
	now := func() time.Time { return time.Unix(1700000000, 0) }

	used := map[string]struct{}{"README": {}}
	if got := allocName("README", used, now); got != "README_1" {
		t.Fatalf("期望 README_1，实际=%q", got)
	}

	used = map[string]struct{}{".gitignore": {}}
	if got := allocName(".gitignore", used, now); got != ".gitignore_1" {
		t.Fatalf("期望 .gitignore_1，实际=%q", got)
	}
}

func TestAllocName_TimestampFallback(t *testing.T) {
	now := func() time.Time { return time.Unix(1700000000, 0) }

	used := make(map[string]struct{}, 10001)
	used["a.txt"] = struct{}{}
	for i := 1; i < 10000; i++ {
		used[fmt.Sprintf("a_%d.txt", i)] = struct{}{}
	}

	if got := allocName("a.txt", used, now); got != "a_1700000000.txt" {
		t.Fatalf("期望时间戳兜底，实际=%q", got)
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
