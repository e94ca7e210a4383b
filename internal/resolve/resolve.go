// Package resolve 把签名探测、声明扩展名与二进制策略合并成单文件结论。
package resolve

import (
	"fmt"

	"github.com/John-Robertt/sortify/internal/domain"
	"github.com/John-Robertt/sortify/internal/policy"
	"github.com/John-Robertt/sortify/internal/prompt"
	"github.com/John-Robertt/sortify/internal/sniff"
)

// Options 控制裁决行为（对应 --ext-only / --dry-run）。
type Options struct {
	ExtOnly bool
	DryRun  bool
}

// Decide 对单个文件做一次完整裁决。
//
// 约束：
// - det 必须来自该文件的唯一一份前缀快照
// - 策略状态值传入传出，由批次驱动器按顺序串行持有
// - dry-run 下绝不询问，也绝不改变策略状态
// - ext-only 下完全不看 det（签名与二进制判定都被禁用）
func Decide(entry domain.FileEntry, det sniff.Detection, opts Options, state policy.Binary, pr prompt.Prompter) (domain.Resolution, policy.Binary, error) {
	if opts.ExtOnly {
		return domain.Resolution{Action: domain.ActionAccept, Label: fallbackLabel(entry.Ext)}, state, nil
	}

	res, err := resolveLabel(entry, det, opts.DryRun, pr)
	if err != nil {
		return domain.Resolution{}, state, err
	}
	if res.Action == domain.ActionSkip {
		return res, state, nil
	}

	if det.Binary {
		if opts.DryRun {
			// 演练模式：记一条警告并按跳过处理，不询问也不改策略。
			res.Action = domain.ActionSkip
			res.SkipReason = domain.SkipReasonBinaryDryRun
			return res, state, nil
		}
		action, next, err := policy.Decide(state, pr, entry.Name)
		if err != nil {
			return domain.Resolution{}, state, err
		}
		state = next
		if action == policy.Skip {
			res.Action = domain.ActionSkip
			res.SkipReason = domain.SkipReasonBinaryPolicy
			return res, state, nil
		}
	}
	return res, state, nil
}

// resolveLabel 只回答“生效类型标签是什么”，不碰二进制判定。
func resolveLabel(entry domain.FileEntry, det sniff.Detection, dryRun bool, pr prompt.Prompter) (domain.Resolution, error) {
	if det.Label == "" {
		return domain.Resolution{Action: domain.ActionAccept, Label: fallbackLabel(entry.Ext)}, nil
	}
	if entry.Ext == "" || entry.Ext == det.Label {
		return domain.Resolution{Action: domain.ActionAccept, Label: det.Label}, nil
	}

	// 冲突：签名与声明扩展名不一致。
	if dryRun {
		// 冲突对始终记录；生效标签取签名侧，供“将要移动”汇总使用。
		return domain.Resolution{
			Action:   domain.ActionAccept,
			Label:    det.Label,
			Detected: det.Label,
			Declared: entry.Ext,
		}, nil
	}
	return askConflict(entry, det.Label, pr)
}

func askConflict(entry domain.FileEntry, detected string, pr prompt.Prompter) (domain.Resolution, error) {
	title := fmt.Sprintf("签名与扩展名不符：%s（签名 .%s / 扩展名 .%s），如何处理？", entry.Name, detected, entry.Ext)
	options := []string{
		"跳过该文件",
		fmt.Sprintf("按签名类型整理（.%s）", detected),
		fmt.Sprintf("按声明扩展名整理（.%s）", entry.Ext),
		"移入人工核对目录",
	}

	idx, err := pr.Select(title, options)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("冲突处理询问失败：%w", err)
	}
	switch idx {
	case 0:
		return domain.Resolution{Action: domain.ActionSkip, SkipReason: domain.SkipReasonUserChoice}, nil
	case 1:
		return domain.Resolution{Action: domain.ActionAccept, Label: detected}, nil
	case 2:
		return domain.Resolution{Action: domain.ActionAccept, Label: entry.Ext}, nil
	case 3:
		// 路由到人工核对目录；冲突对进入报告。
		return domain.Resolution{
			Action:   domain.ActionAccept,
			Label:    domain.LabelMismatch,
			Detected: detected,
			Declared: entry.Ext,
		}, nil
	default:
		return domain.Resolution{}, fmt.Errorf("非法的选择下标：%d", idx)
	}
}

func fallbackLabel(ext string) string {
	if ext == "" {
		return domain.LabelUnknown
	}
	return ext
}
