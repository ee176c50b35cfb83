package run

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/John-Robertt/extsort/internal/app/planner"
	"github.com/John-Robertt/extsort/internal/domain"
	"github.com/John-Robertt/extsort/internal/infra/fsx"
)

// maxRenameRaces：rename 时发现目标被外部抢先创建，最多重新解析的次数。
const maxRenameRaces = 3

// renameNoReplace 可在测试中替换，用于模拟 EXDEV 或 rename 竞争。
var renameNoReplace = fsx.RenameNoReplace

// Move 对单个请求执行（或预览）一次移动；目标目录需已存在（dry-run 除外）。
// 结果中的路径相对 req.DstDir 的父目录（即整理根目录）。
func (o *Organizer) Move(req domain.MoveRequest) domain.MoveResult {
	root := filepath.Dir(filepath.Clean(req.DstDir))
	return o.move(root, req, planner.NewResolver())
}

func (o *Organizer) move(root string, req domain.MoveRequest, resolver *planner.Resolver) domain.MoveResult {
	res := domain.MoveResult{
		Src:      o.rel(root, req.SrcAbs),
		Category: req.Category,
	}
	prefix := dryPrefix(req.DryRun)

	for attempt := 0; ; attempt++ {
		plan, err := resolver.Resolve(req)
		if err != nil {
			res.Outcome = domain.OutcomeFailed
			res.ErrorCode = domain.ErrCodeMoveFailed
			if errors.Is(err, planner.ErrNoFreeName) {
				res.ErrorCode = domain.ErrCodeCollision
			}
			res.ErrorMsg = err.Error()
			o.log.Error(fmt.Sprintf("%sFailed to move %s to %s: %v", prefix, req.SrcAbs, req.Category, err),
				o.fields(req, req.DstDir, zap.String("error_code", res.ErrorCode), zap.Error(err))...)
			return res
		}
		res.Dst = o.rel(root, plan.DstAbs)

		if plan.NoOp {
			res.Outcome = domain.OutcomeNoOp
			o.log.Info(fmt.Sprintf("%sNo movement required: %s is already in %s", prefix, req.DstName, req.Category),
				o.fields(req, plan.DstAbs)...)
			return res
		}

		if !req.DryRun {
			err = renameNoReplace(req.SrcAbs, plan.DstAbs)
			if err != nil && errors.Is(err, fs.ErrExist) && attempt < maxRenameRaces {
				// 解析与 rename 之间目标被外部创建：重新挑一个名字，绝不覆盖。
				resolver.Reserve(plan.DstAbs)
				continue
			}
			if err != nil {
				res.Outcome = domain.OutcomeFailed
				res.ErrorCode = domain.ErrCodeMoveFailed
				if fsx.IsCrossDevice(err) {
					res.ErrorCode = domain.ErrCodeCrossDevice
				}
				res.ErrorMsg = err.Error()
				o.log.Error(fmt.Sprintf("Failed to move %s to %s: %v", req.SrcAbs, req.Category, err),
					o.fields(req, plan.DstAbs, zap.String("error_code", res.ErrorCode), zap.Error(err))...)
				return res
			}
		}

		if plan.Collision {
			res.Outcome = domain.OutcomeCollision
			res.ErrorCode = domain.ErrCodeCollision
			res.ErrorMsg = fmt.Sprintf("%s already exists in %s", req.DstName, req.Category)
			verb := "Moved to"
			if req.DryRun {
				verb = "Would move to"
			}
			o.log.Error(fmt.Sprintf("%sFile %s already exists in %s. %s %s", prefix, req.DstName, req.Category, verb, plan.DstAbs),
				o.fields(req, plan.DstAbs, zap.String("error_code", res.ErrorCode), zap.Strings("occupied", plan.Occupied))...)
			return res
		}

		res.Outcome = domain.OutcomeMoved
		if req.DryRun {
			res.Outcome = domain.OutcomePlanned
		}
		o.log.Info(fmt.Sprintf("%sMoving %s to %s", prefix, req.DstName, req.Category),
			o.fields(req, plan.DstAbs)...)
		return res
	}
}

func (o *Organizer) fields(req domain.MoveRequest, dst string, extra ...zap.Field) []zap.Field {
	out := make([]zap.Field, 0, 4+len(extra))
	out = append(out,
		zap.String("src", req.SrcAbs),
		zap.String("dst", dst),
		zap.String("category", req.Category),
		zap.Bool("dry_run", req.DryRun),
	)
	return append(out, extra...)
}
