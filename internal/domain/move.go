package domain

// MoveRequest 是一次文件移动的最小描述；每个文件生成一个，立即被消费，不持久化。
type MoveRequest struct {
	SrcAbs   string
	DstDir   string
	DstName  string
	Category string
	DryRun   bool
}

// Outcome 是单个文件的处理结论。
type Outcome string

const (
	OutcomeMoved     Outcome = "moved"
	OutcomePlanned   Outcome = "planned"   // dry-run：仅预览
	OutcomeNoOp      Outcome = "noop"      // 已在正确位置
	OutcomeCollision Outcome = "collision" // 同名冲突：改名为 _backup 后移动（dry-run 下仅预览）
	OutcomeFailed    Outcome = "failed"
)

const (
	ErrCodePrecondition   = "precondition_failed"
	ErrCodeCollision      = "collision"
	ErrCodeTargetConflict = "target_conflict"
	ErrCodeMkdirFailed    = "mkdir_failed"
	ErrCodeMoveFailed     = "move_failed"
	ErrCodeCrossDevice    = "cross_device"
	ErrCodeScanFailed     = "scan_failed"
	ErrCodeInterrupted    = "interrupted"
	ErrCodeConfigInvalid  = "config_invalid"
	ErrCodeConfigNotFound = "config_not_found"
)

// MoveResult 是 Move 操作的返回值（成功 / 冲突已恢复 / 失败）。
// Src/Dst 为相对扫描根目录的路径；无法计算相对路径时退化为绝对路径。
type MoveResult struct {
	Src      string  `json:"src"`
	Dst      string  `json:"dst"`
	Category string  `json:"category"`
	Outcome  Outcome `json:"outcome"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// ErrorLevel 表示该结果需要进入错误日志流（失败，或已恢复的冲突）。
func (r MoveResult) ErrorLevel() bool {
	return r.Outcome == OutcomeFailed || r.Outcome == OutcomeCollision
}
