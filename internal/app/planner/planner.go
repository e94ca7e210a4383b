package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/sortify/internal/classify"
	"github.com/John-Robertt/sortify/internal/domain"
)

// Planner 为单个目标目录生成确定性的移动计划。
//
// 每个分类目录的现有文件名只读取一次（ReadDir），之后的分配基于内存集合
// 递推（包含本批次已分配、尚未落盘的名字）。计划阶段不做任何写入/移动。
type Planner struct {
	root string
	used map[classify.Category]map[string]struct{}

	// now 只用于近万个同名文件时的时间戳兜底（测试注入）。
	now func() time.Time
}

func New(root string) *Planner {
	return &Planner{
		root: filepath.Clean(root),
		used: make(map[classify.Category]map[string]struct{}, 8),
		now:  time.Now,
	}
}

// Plan 为 srcAbs 在 cat 分类目录下分配目标路径。
// 同名冲突时依次尝试 name_1 … name_9999，仍冲突则以 Unix 时间戳兜底。
func (p *Planner) Plan(cat classify.Category, srcAbs string) (domain.MovePlan, error) {
	used, err := p.usedNames(cat)
	if err != nil {
		return domain.MovePlan{}, err
	}

	dstName := allocName(filepath.Base(srcAbs), used, p.now)
	used[dstName] = struct{}{}

	return domain.MovePlan{
		Src:  srcAbs,
		Dst:  filepath.Join(p.root, cat.DirName(), dstName),
		Dest: filepath.Join(cat.DirName(), dstName),
	}, nil
}

// usedNames 返回 cat 分类目录的占用名集合（惰性初始化）。
// 目录不存在时返回空集合且不报错。
func (p *Planner) usedNames(cat classify.Category) (map[string]struct{}, error) {
	if used, ok := p.used[cat]; ok {
		return used, nil
	}

	used := make(map[string]struct{}, 16)
	entries, err := os.ReadDir(filepath.Join(p.root, cat.DirName()))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取分类目录失败 %s：%w", cat.DirName(), err)
		}
	} else {
		for _, e := range entries {
			used[e.Name()] = struct{}{}
		}
	}

	p.used[cat] = used
	return used, nil
}

func allocName(name string, used map[string]struct{}, now func() time.Time) string {
	if _, ok := used[name]; !ok {
		return name
	}

	stem, ext := splitName(name)

	for i := 1; i < 10000; i++ {
		cand := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, ok := used[cand]; !ok {
			return cand
		}
	}

	// 同名已有近万个：以时间戳兜底，不再保证无冲突。
	return fmt.Sprintf("%s_%d%s", stem, now().Unix(), ext)
}

// splitName 按与 domain.ExtOf 相同的边界拆分文件名：
// 隐藏文件（.gitignore）与尾部点号不视为有扩展名。
func splitName(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}
