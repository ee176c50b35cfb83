package run

import (
	"time"

	"github.com/John-Robertt/extsort/internal/domain"
)

// Observer 用于把“运行进度/阶段/单文件结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何终端输出（避免污染 stdout 的 JSON 契约）。
// - 事件在调用 Execute 的 goroutine 上同步触发；实现若自行起 goroutine，需自行加锁。
type Observer interface {
	// OnStart 在扫描开始前调用。
	OnStart(root string, dryRun bool)
	// OnPhaseDone 在阶段结束/就绪时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnFileDone 在每个文件处理完成时调用。
	OnFileDone(idx, total int, res domain.MoveResult, dur time.Duration)
}
