package planner

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/extsort/internal/domain"
	"github.com/John-Robertt/extsort/internal/infra/fsx"
)

// BackupSuffix 追加在冲突文件名（扩展名之前）上。
const BackupSuffix = "_backup"

// ErrNoFreeName 表示 _backup_N 候选全部被占用。
var ErrNoFreeName = errors.New("no free backup name")

// maxBackupAttempts 限制 _backup_N 的探测次数，避免异常目录下无限循环。
const maxBackupAttempts = 10000

// DestDir 返回类别目录 <root>/<category>。
func DestDir(root, category string) string {
	return filepath.Join(filepath.Clean(root), category)
}

// Resolution 是一次目标路径解析的结论（dry-run 与真实运行共用同一套逻辑）。
type Resolution struct {
	DstAbs string
	// NoOp：源路径即最终路径（文件已在正确的类别目录下）。
	NoOp bool
	// Collision：原名已被占用，DstAbs 是 _backup 改名后的路径。
	Collision bool
	// Occupied 按探测顺序列出被占用的候选路径。
	Occupied []string
}

// Resolver 为每个 MoveRequest 选出最终目标路径，并记住本轮已分配的名字。
//
// 约束：
// - 磁盘上已存在的名字、以及本轮更早分配出去的名字都视为占用
// - 因此 dry-run（不落盘）与真实运行对同一输入计算出相同的目标
type Resolver struct {
	reserved map[string]struct{}
	exists   func(string) (bool, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		reserved: make(map[string]struct{}, 128),
		exists:   fsx.Exists,
	}
}

// Resolve 计算 req 的最终目标路径，并把它登记为本轮已占用（NoOp 除外）。
//
// 冲突策略（确定性）：name.ext -> name_backup.ext -> name_backup_2.ext -> name_backup_3.ext ...
// 绝不返回一个已被占用的路径。
func (r *Resolver) Resolve(req domain.MoveRequest) (Resolution, error) {
	src := filepath.Clean(req.SrcAbs)
	want := filepath.Join(filepath.Clean(req.DstDir), req.DstName)
	if src == want {
		return Resolution{DstAbs: want, NoOp: true}, nil
	}

	var occupied []string
	for n := 0; n <= maxBackupAttempts; n++ {
		cand := filepath.Join(filepath.Clean(req.DstDir), candidateName(req.DstName, n))
		busy, err := r.occupied(cand)
		if err != nil {
			return Resolution{}, err
		}
		if busy {
			occupied = append(occupied, cand)
			continue
		}
		r.reserved[cand] = struct{}{}
		return Resolution{
			DstAbs:    cand,
			Collision: n > 0,
			Occupied:  occupied,
		}, nil
	}
	return Resolution{Occupied: occupied}, fmt.Errorf("%w for %q in %q after %d attempts", ErrNoFreeName, req.DstName, req.DstDir, maxBackupAttempts)
}

// Reserve 手动登记一个占用（例如真实 rename 时发现目标被外部进程抢先创建）。
func (r *Resolver) Reserve(dstAbs string) {
	r.reserved[filepath.Clean(dstAbs)] = struct{}{}
}

func (r *Resolver) occupied(p string) (bool, error) {
	if _, ok := r.reserved[p]; ok {
		return true, nil
	}
	return r.exists(p)
}

// candidateName 返回第 n 个候选名：0 为原名，1 为 _backup，n>=2 为 _backup_n。
func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	base, ext := domain.SplitName(name)
	if n == 1 {
		return base + BackupSuffix + ext
	}
	return fmt.Sprintf("%s%s_%d%s", base, BackupSuffix, n, ext)
}

