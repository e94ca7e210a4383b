// Package policy 维护批次内二进制文件的处理策略状态机。
package policy

import (
	"fmt"

	"github.com/John-Robertt/sortify/internal/prompt"
)

// Binary 是批次级二进制策略状态。
// 初始为 AskEachTime；只因用户显式选择而迁移；批次中途永不重置。
type Binary int

const (
	AskEachTime Binary = iota
	SkipAllBinaries
	NeverSkipBinaries
)

// Action 是对单个二进制文件的处置。
type Action int

const (
	Skip Action = iota
	Process
)

var binaryOptions = []string{
	"跳过该文件",
	"跳过所有二进制文件",
	"处理该文件（下次仍询问）",
	"始终处理二进制文件，不再询问",
}

// Decide 给出对一个二进制文件的处置以及下一个状态。
//
// 状态由批次驱动器持有：值传入，返回值回填——不允许隐式可变单例。
// 文件 N 的选择合法地改变文件 N+1 的行为，因此调用必须按批次顺序串行。
func Decide(state Binary, pr prompt.Prompter, name string) (Action, Binary, error) {
	switch state {
	case SkipAllBinaries:
		return Skip, SkipAllBinaries, nil
	case NeverSkipBinaries:
		return Process, NeverSkipBinaries, nil
	default:
		return askOnce(pr, name)
	}
}

func askOnce(pr prompt.Prompter, name string) (Action, Binary, error) {
	idx, err := pr.Select(fmt.Sprintf("检测到二进制文件：%s，如何处理？", name), binaryOptions)
	if err != nil {
		return Skip, AskEachTime, fmt.Errorf("二进制处理询问失败：%w", err)
	}
	switch idx {
	case 0:
		return Skip, AskEachTime, nil
	case 1:
		return Skip, SkipAllBinaries, nil
	case 2:
		return Process, AskEachTime, nil
	case 3:
		return Process, NeverSkipBinaries, nil
	default:
		return Skip, AskEachTime, fmt.Errorf("非法的选择下标：%d", idx)
	}
}
