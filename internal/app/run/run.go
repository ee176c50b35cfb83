package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/John-Robertt/extsort/internal/app/planner"
	"github.com/John-Robertt/extsort/internal/classify"
	"github.com/John-Robertt/extsort/internal/config"
	"github.com/John-Robertt/extsort/internal/domain"
	"github.com/John-Robertt/extsort/internal/infra/fsx"
	"github.com/John-Robertt/extsort/internal/scan"
)

// PreconditionError 表示源目录不存在（或不是目录）：整次运行在任何遍历之前中止。
type PreconditionError struct {
	Path string
	Err  error
}

func (e *PreconditionError) Error() string {
	if errors.Is(e.Err, os.ErrNotExist) {
		return fmt.Sprintf("Directory not found: %s", e.Path)
	}
	return fmt.Sprintf("Directory not usable: %s: %v", e.Path, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// IsPrecondition 判断 err 是否为 PreconditionError。
func IsPrecondition(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}

var errNotDir = errors.New("not a directory")

// CheckRoot 校验源目录存在且是目录；只做 stat，不产生任何写入。
func CheckRoot(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		return &PreconditionError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return &PreconditionError{Path: root, Err: errNotDir}
	}
	return nil
}

// Organizer 按扩展名把 root 下的文件搬进 <root>/<Category>/。
//
// 单线程、同步：文件逐个处理；任何单文件错误都降级为 MoveResult 并写入错误日志，
// 只有前置条件失败（源目录不存在）与外部中断会终止整次运行。
type Organizer struct {
	classifier *classify.Classifier
	log        *zap.Logger
	obs        Observer
	exclude    []string
	runID      string
	now        func() time.Time
}

// Option 调整 Organizer 的可选依赖。
type Option func(*Organizer)

// WithLogger 设置日志；nil 等价于 zap.NewNop()。
func WithLogger(l *zap.Logger) Option {
	return func(o *Organizer) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver 设置进度观察者。
func WithObserver(obs Observer) Option {
	return func(o *Organizer) { o.obs = obs }
}

// WithExclude 设置扫描时跳过的绝对文件路径。
func WithExclude(paths ...string) Option {
	return func(o *Organizer) { o.exclude = append(o.exclude, paths...) }
}

// WithRunID 固定本次运行的 id（默认随机 uuid）。
func WithRunID(id string) Option {
	return func(o *Organizer) {
		if id != "" {
			o.runID = id
		}
	}
}

// New 构造 Organizer；classifier 由调用方注入，便于在测试/嵌入场景替换类别表。
func New(c *classify.Classifier, opts ...Option) *Organizer {
	o := &Organizer{
		classifier: c,
		log:        zap.NewNop(),
		runID:      uuid.NewString(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With(zap.String("run", o.runID))
	return o
}

// Execute 按生效配置组装 Organizer 并运行一次（CLI 的入口）。
func Execute(ctx context.Context, eff config.EffectiveConfig, log *zap.Logger, obs Observer) (domain.RunReport, error) {
	c, err := classify.New(eff.Categories, eff.Others)
	if err != nil {
		return domain.RunReport{}, err
	}
	o := New(c, WithLogger(log), WithObserver(obs), WithExclude(eff.Excluded()...))
	return o.Organize(ctx, eff.Path, eff.DryRun)
}

// Organize 执行一次整理（dry-run 或真实移动），并返回对外稳定的 RunReport。
//
// 返回 error 仅限：源目录前置条件失败、根目录无法遍历。
// ctx 被取消时（扫描中或两个文件之间）停止，报告标记 Interrupted=true（每次移动都是原子 rename，树保持一致）。
func (o *Organizer) Organize(ctx context.Context, root string, dryRun bool) (domain.RunReport, error) {
	root = filepath.Clean(root)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	if err := CheckRoot(root); err != nil {
		return domain.RunReport{}, err
	}
	// WalkDir 不会进入符号链接形式的根目录：先展开为真实路径，排除项同理。
	root = fsx.ResolvePath(root)
	exclude := make([]string, 0, len(o.exclude))
	for _, p := range o.exclude {
		exclude = append(exclude, fsx.ResolvePath(p))
	}

	rr := domain.RunReport{
		RunID:     o.runID,
		Path:      root,
		DryRun:    dryRun,
		StartedAt: o.now(),
		Files:     make([]domain.MoveResult, 0, 128),
	}

	if o.obs != nil {
		o.obs.OnStart(root, dryRun)
	}

	// 先完整物化候选列表，再开始移动：新建的类别目录不会被重复遍历。
	scanStarted := time.Now()
	snap, err := scan.ScanFiles(ctx, root, exclude)
	if err != nil {
		if ctx.Err() != nil {
			rr.Interrupted = true
			o.log.Warn("Interrupted while scanning, no files were moved",
				zap.String("path", root), zap.Bool("dry_run", dryRun))
			return o.finish(rr), nil
		}
		return domain.RunReport{}, fmt.Errorf("scan %s: %w", root, err)
	}
	scanDur := time.Since(scanStarted)

	for _, p := range snap.Problems {
		res := domain.MoveResult{
			Src:       o.rel(root, p.AbsPath),
			Outcome:   domain.OutcomeFailed,
			ErrorCode: domain.ErrCodeScanFailed,
			ErrorMsg:  p.Err.Error(),
		}
		o.log.Error(fmt.Sprintf("Failed to scan %s: %v", p.AbsPath, p.Err),
			zap.String("src", p.AbsPath), zap.Bool("dry_run", dryRun), zap.Error(p.Err))
		rr.Files = append(rr.Files, res)
	}

	if o.obs != nil {
		o.obs.OnPhaseDone("scan", map[string]any{
			"files":    len(snap.Files),
			"problems": len(snap.Problems),
		}, scanDur)
	}

	resolver := planner.NewResolver()
	total := len(snap.Files)
	for i, f := range snap.Files {
		if ctx.Err() != nil {
			rr.Interrupted = true
			o.log.Warn(fmt.Sprintf("Interrupted after %d of %d files", i, total),
				zap.Int("done", i), zap.Int("total", total), zap.Bool("dry_run", dryRun))
			break
		}

		started := time.Now()
		res := o.organizeOne(root, f, dryRun, resolver)
		rr.Files = append(rr.Files, res)
		if o.obs != nil {
			o.obs.OnFileDone(i+1, total, res, time.Since(started))
		}
	}

	return o.finish(rr), nil
}

// finish 收尾：计算汇总并发出 organize 阶段事件。
func (o *Organizer) finish(rr domain.RunReport) domain.RunReport {
	rr.FinishedAt = o.now()
	rr.Finalize()

	if o.obs != nil {
		o.obs.OnPhaseDone("organize", map[string]any{
			"moved":      rr.Summary.Moved,
			"planned":    rr.Summary.Planned,
			"noop":       rr.Summary.NoOp,
			"collisions": rr.Summary.Collisions,
			"failed":     rr.Summary.Failed,
		}, rr.FinishedAt.Sub(rr.StartedAt))
	}
	return rr
}

// organizeOne：扩展名 -> 类别 -> 确保类别目录存在 -> 提交 MoveRequest。
func (o *Organizer) organizeOne(root string, f domain.FileEntry, dryRun bool, resolver *planner.Resolver) domain.MoveResult {
	category := o.classifier.Classify(f.Ext)
	req := domain.MoveRequest{
		SrcAbs:   f.AbsPath,
		DstDir:   planner.DestDir(root, category),
		DstName:  f.Name,
		Category: category,
		DryRun:   dryRun,
	}

	// dry-run 只探测（不创建），但与真实运行一样识别“路径被文件占用”。
	var err error
	if dryRun {
		_, err = fsx.ProbeDir(req.DstDir)
	} else {
		err = fsx.EnsureDir(req.DstDir)
	}
	if err != nil {
		code := domain.ErrCodeMkdirFailed
		if fsx.IsPathTypeConflict(err) {
			code = domain.ErrCodeTargetConflict
		}
		res := domain.MoveResult{
			Src:       o.rel(root, req.SrcAbs),
			Dst:       o.rel(root, req.DstDir),
			Category:  category,
			Outcome:   domain.OutcomeFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}
		o.log.Error(fmt.Sprintf("%sFailed to create directory %s for %s: %v", dryPrefix(dryRun), req.DstDir, f.Name, err),
			o.fields(req, req.DstDir, zap.String("error_code", code), zap.Error(err))...)
		return res
	}

	return o.move(root, req, resolver)
}

func (o *Organizer) rel(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil {
		return rel
	}
	return p
}

func dryPrefix(dryRun bool) string {
	if dryRun {
		return "DRY RUN: "
	}
	return ""
}
