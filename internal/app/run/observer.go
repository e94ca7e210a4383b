package run

import (
	"time"

	"github.com/John-Robertt/sortify/internal/config"
	"github.com/John-Robertt/sortify/internal/domain"
)

// Observer 把运行进度的呈现从执行流程中剥离：run 只发事件，不直接输出
// （stdout 的 JSON 契约不容许过程文本混入）。
//
// 事件全部来自驱动 goroutine，按发生顺序串行送达；交互式询问会阻塞
// 整个批次，期间不会有新事件插队，实现方因此无需加锁。
type Observer interface {
	// OnStart 在扫描前调用一次，携带合并后的生效配置（用于回显）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段完成时调用：scan/detect 的统计与耗时，以及逐文件处理前的开场通告。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnFileDone 在单个文件得到最终结论时调用（用于每条结果的一行输出）。
	OnFileDone(idx, total int, name string, res domain.FileResult, dur time.Duration)
}
