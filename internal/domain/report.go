package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// RunReport 是对外稳定输出（--report 文件 / stdout JSON）的结构。
type RunReport struct {
	RunID       string `json:"run_id"`
	Path        string `json:"path"`
	DryRun      bool   `json:"dry_run"`
	Interrupted bool   `json:"interrupted"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Files   []MoveResult  `json:"files"`
}

type ReportSummary struct {
	Total      int `json:"total"`
	Moved      int `json:"moved"`
	Planned    int `json:"planned"`
	NoOp       int `json:"noop"`
	Collisions int `json:"collisions"`
	Failed     int `json:"failed"`

	// Categories 按类别统计落点（不含失败项）。
	Categories map[string]int `json:"categories"`
}

// HasErrors 表示错误日志中至少写入了一条记录。
func (s ReportSummary) HasErrors() bool {
	return s.Failed > 0 || s.Collisions > 0
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) files 稳定排序：按 src 字典序
// 3) summary 由 files 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Files == nil {
		r.Files = []MoveResult{}
	}
	sort.SliceStable(r.Files, func(i, j int) bool { return r.Files[i].Src < r.Files[j].Src })

	s := ReportSummary{
		Total:      len(r.Files),
		Categories: map[string]int{},
	}
	for _, f := range r.Files {
		switch f.Outcome {
		case OutcomeMoved:
			s.Moved++
		case OutcomePlanned:
			s.Planned++
		case OutcomeNoOp:
			s.NoOp++
		case OutcomeCollision:
			s.Collisions++
		case OutcomeFailed:
			s.Failed++
		}
		if f.Outcome != OutcomeFailed && f.Category != "" {
			s.Categories[f.Category]++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为（map 键由 encoding/json 排序）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
