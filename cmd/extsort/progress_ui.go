package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/John-Robertt/extsort/internal/app/run"
	"github.com/John-Robertt/extsort/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的进度输出：阶段行 + 一根进度条。
//
// 所有过程信息写到 stderr（或 fallback 到 stdout），不影响 stdout 的 JSON 输出契约。
type progressUI struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(root string, dryRun bool) {
	mode := "apply"
	hint := ""
	if dryRun {
		mode = "dry-run"
		hint = " (no files will be moved)"
	}
	fmt.Fprintf(p.w, "[%s] extsort (%s)\n", time.Now().Format("15:04:05"), mode)
	fmt.Fprintf(p.w, "  path: %s\n", root)
	fmt.Fprintf(p.w, "  mode: %s%s\n\n", mode, hint)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case "scan":
		files := intField(fields, "files")
		fmt.Fprintf(p.w, "scan: files=%d problems=%d (%s)\n",
			files, intField(fields, "problems"), formatShortDuration(dur),
		)
		if files > 0 {
			p.bar = progressbar.NewOptions(files,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetDescription("organizing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
	case "organize":
		if p.bar != nil {
			_ = p.bar.Finish()
			p.bar = nil
		}
		fmt.Fprintf(p.w, "organize: moved=%d planned=%d noop=%d collisions=%d failed=%d (%s)\n\n",
			intField(fields, "moved"),
			intField(fields, "planned"),
			intField(fields, "noop"),
			intField(fields, "collisions"),
			intField(fields, "failed"),
			formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnFileDone(idx, total int, res domain.MoveResult, dur time.Duration) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(truncate(res.Src, 40))
	_ = p.bar.Add(1)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return "..." + s[len(s)-(max-3):]
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
