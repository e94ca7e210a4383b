// Package prompt 定义交互式选择能力，并提供行式终端实现。
//
// 解析路径中的阻塞式提问必须通过注入的接口进入，
// 测试用脚本化的选择序列替代真实输入。
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter 渲染一组选项并返回 0 起的选择下标。
// 读取输入失败时返回错误；按契约该错误会中止整个批次。
type Prompter interface {
	Select(title string, options []string) (int, error)
}

// Terminal 是基于行读取的实现：打印编号选项，读取序号。
// 空行选中第一项（与旧版交互的默认项一致）；无法解析的输入重新询问。
type Terminal struct {
	r *bufio.Reader
	w io.Writer
}

func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{r: bufio.NewReader(r), w: w}
}

func (t *Terminal) Select(title string, options []string) (int, error) {
	fmt.Fprintf(t.w, "\n%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(t.w, "  [%d] %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(t.w, "请选择 [1-%d]（回车默认 1）：", len(options))

		line, err := t.r.ReadString('\n')
		s := strings.TrimSpace(line)
		if s == "" {
			if err != nil {
				// 输入流已经结束（非交互环境）：这是失败，不能静默选默认项。
				return 0, fmt.Errorf("读取用户输入失败：%w", err)
			}
			return 0, nil
		}
		if n, convErr := strconv.Atoi(s); convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		if err != nil {
			return 0, fmt.Errorf("读取用户输入失败：%w", err)
		}
		fmt.Fprintf(t.w, "无法识别的选择：%q\n", s)
	}
}
