package run

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/John-Robertt/sortify/internal/app/planner"
	"github.com/John-Robertt/sortify/internal/classify"
	"github.com/John-Robertt/sortify/internal/config"
	"github.com/John-Robertt/sortify/internal/domain"
	"github.com/John-Robertt/sortify/internal/infra/cache"
	"github.com/John-Robertt/sortify/internal/infra/fsx"
	"github.com/John-Robertt/sortify/internal/policy"
	"github.com/John-Robertt/sortify/internal/prompt"
	"github.com/John-Robertt/sortify/internal/resolve"
	"github.com/John-Robertt/sortify/internal/scan"
	"github.com/John-Robertt/sortify/internal/sniff"
)

// lockFileName 与 scan 的永久排除名保持一致：锁文件永远不参与整理。
const lockFileName = ".sortify.lock"

// 注入点：测试里替换，避免依赖真实可执行文件路径与用户缓存目录。
var (
	executablePath = os.Executable
	cacheRoot      = cache.DefaultRoot
)

// Execute 执行一次整理（dry-run 或真实移动），返回对外稳定的 RunReport。
//
// 错误语义：文件系统失败与询问失败都会中止整个批次（返回非 nil error），
// 已得出结论的文件仍保留在报告里；单个文件没有“降级为失败继续跑”的路径。
func Execute(ctx context.Context, eff config.EffectiveConfig, pr prompt.Prompter) (domain.RunReport, error) {
	return ExecuteWithObserver(ctx, eff, pr, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, pr prompt.Prompter, obs Observer) (domain.RunReport, error) {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.Path,
		DryRun:    eff.DryRun,
		ExtOnly:   eff.ExtOnly,
		StartedAt: started,
		Files:     make([]domain.FileResult, 0, 64),
	}

	// 运行锁只在真实移动时持有；dry-run 不落任何文件，自然也不抢锁。
	if !eff.DryRun {
		lk := flock.New(filepath.Join(eff.Path, lockFileName))
		locked, err := lk.TryLock()
		if err != nil {
			return finish(&rr), fmt.Errorf("获取运行锁失败：%w", err)
		}
		if !locked {
			return finish(&rr), fmt.Errorf("目录正被另一个 sortify 实例整理：%s", eff.Path)
		}
		defer func() { _ = lk.Unlock() }()
	}

	scanStarted := time.Now()
	entries, err := scan.Collect(eff.Path, selfPath(), eff.Exclude)
	if err != nil {
		return finish(&rr), fmt.Errorf("扫描失败：%w", err)
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files": len(entries),
		}, time.Since(scanStarted))
	}

	// 阶段一：并发探测。只读不写、无共享可变状态，放心并发。
	dets, err := detectAll(ctx, eff, entries, obs)
	if err != nil {
		return finish(&rr), err
	}

	if obs != nil {
		obs.OnPhaseDone("resolve", map[string]any{
			"files": len(entries),
		}, 0)
	}

	// 阶段二：严格串行。询问会阻塞批次，策略状态值传入传出，
	// 文件 N 的选择合法地改变文件 N+1 的行为。
	pl := planner.New(eff.Path)
	state := policy.AskEachTime
	opts := resolve.Options{ExtOnly: eff.ExtOnly, DryRun: eff.DryRun}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return finish(&rr), err
		}
		itemStarted := time.Now()

		if entry.Self {
			fr := domain.FileResult{
				Name:       entry.Name,
				Status:     domain.FileStatusSkipped,
				SkipReason: domain.SkipReasonSelf,
			}
			rr.Files = append(rr.Files, fr)
			if obs != nil {
				obs.OnFileDone(i+1, len(entries), entry.Name, fr, time.Since(itemStarted))
			}
			continue
		}

		res, next, err := resolve.Decide(entry, dets[i], opts, state, pr)
		if err != nil {
			return finish(&rr), err
		}
		state = next

		if res.Action == domain.ActionSkip {
			fr := domain.FileResult{
				Name:       entry.Name,
				Status:     domain.FileStatusSkipped,
				Detected:   res.Detected,
				Declared:   res.Declared,
				SkipReason: res.SkipReason,
			}
			rr.Files = append(rr.Files, fr)
			if obs != nil {
				obs.OnFileDone(i+1, len(entries), entry.Name, fr, time.Since(itemStarted))
			}
			continue
		}

		cat := classify.FromLabel(res.Label)
		plan, err := pl.Plan(cat, entry.Path)
		if err != nil {
			return finish(&rr), err
		}

		status := domain.FileStatusPlanned
		if !eff.DryRun {
			if err := fsx.EnsureDir(filepath.Dir(plan.Dst)); err != nil {
				return finish(&rr), fmt.Errorf("创建分类目录失败：%w", err)
			}
			if err := fsx.Move(plan.Src, plan.Dst); err != nil {
				return finish(&rr), fmt.Errorf("移动文件失败 %s：%w", entry.Name, err)
			}
			status = domain.FileStatusMoved
		}

		fr := domain.FileResult{
			Name:     entry.Name,
			Status:   status,
			Category: cat.DirName(),
			Dest:     plan.Dest,
			Detected: res.Detected,
			Declared: res.Declared,
		}
		rr.Files = append(rr.Files, fr)
		if obs != nil {
			obs.OnFileDone(i+1, len(entries), entry.Name, fr, time.Since(itemStarted))
		}
	}

	out := finish(&rr)
	if !eff.DryRun {
		persistReport(out)
	}
	return out, nil
}

// detectAll 并发读取前缀并完成探测，结果按 entries 下标回填。
// 多个文件同时失败时取最小下标的错误，保证跨运行的报错确定性。
func detectAll(ctx context.Context, eff config.EffectiveConfig, entries []domain.FileEntry, obs Observer) ([]sniff.Detection, error) {
	dets := make([]sniff.Detection, len(entries))
	if eff.ExtOnly || len(entries) == 0 {
		// ext-only 模式完全不读文件内容。
		return dets, nil
	}

	detStarted := time.Now()

	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}

	type detResult struct {
		idx int
		det sniff.Detection
		err error
	}

	jobs := make(chan int)
	results := make(chan detResult, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- detResult{idx: idx, err: err}
					continue
				}
				prefix, err := sniff.ReadPrefix(entries[idx].Path)
				if err != nil {
					results <- detResult{idx: idx, err: err}
					continue
				}
				results <- detResult{idx: idx, det: sniff.Detect(prefix)}
			}
		}()
	}

	go func() {
		for i := range entries {
			if entries[i].Self {
				continue
			}
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	errIdx := -1
	var firstErr error
	sniffed, binaries := 0, 0
	for r := range results {
		if r.err != nil {
			if errIdx == -1 || r.idx < errIdx {
				errIdx = r.idx
				firstErr = r.err
			}
			continue
		}
		dets[r.idx] = r.det
		sniffed++
		if r.det.Binary {
			binaries++
		}
	}
	if errIdx != -1 {
		return nil, fmt.Errorf("类型探测失败：%w", firstErr)
	}

	if obs != nil {
		obs.OnPhaseDone("detect", map[string]any{
			"sniffed":  sniffed,
			"binaries": binaries,
			"workers":  workers,
		}, time.Since(detStarted))
	}
	return dets, nil
}

// finish 补齐时间戳并结算汇总；中止路径与正常路径共用同一出口。
func finish(rr *domain.RunReport) domain.RunReport {
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return *rr
}

// persistReport 把最终报告落到用户缓存目录。尽力而为：
// 缓存不可用不影响本次整理的结果（stdout 的报告才是权威输出）。
func persistReport(rr domain.RunReport) {
	root, err := cacheRoot()
	if err != nil {
		return
	}
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return
	}
	_ = cache.New(root, false).WriteReport(b)
}

// selfPath 解析当前可执行文件的真实路径；失败返回空串（不做自身匹配）。
func selfPath() string {
	p, err := executablePath()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}
