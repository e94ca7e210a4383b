package domain

// 保留标签：不属于任何真实文件类型，只参与路由。
const (
	LabelUnknown  = "unknown"  // 无签名命中且无声明扩展名时的回退标签
	LabelMismatch = "mismatch" // 冲突时选择“人工核对”后的路由标签（→ Check manually）
)

const (
	ActionAccept = "accept"
	ActionSkip   = "skip"
)

// 跳过原因码（Resolution.SkipReason / FileResult.SkipReason）。
const (
	SkipReasonSelf         = "self"
	SkipReasonUserChoice   = "user_choice"
	SkipReasonBinaryPolicy = "binary_policy"
	SkipReasonBinaryDryRun = "binary_dry_run"
)

// Resolution 是类型裁决的结论（每个文件恰好产生一次，消费一次）。
//
// 约束：
// - Action==accept 时 Label 非空（可能是保留标签 mismatch）
// - Detected/Declared 成对出现：要么都为空，要么都非空
type Resolution struct {
	Action string
	Label  string

	// 冲突对：签名类型 / 声明扩展名。只在记录冲突时非空。
	Detected string
	Declared string

	SkipReason string
}

// Mismatched 报告该文件是否记录了冲突对。
func (r Resolution) Mismatched() bool {
	return r.Detected != "" && r.Declared != ""
}
