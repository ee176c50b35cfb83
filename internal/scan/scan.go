package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/extsort/internal/domain"
)

// Problem 记录一次遍历中无法读取的路径（例如无权限的子目录）。
// 单个子目录失败不影响其余文件。
type Problem struct {
	AbsPath string
	Err     error
}

// Result 是一次遍历的快照：所有移动开始之前就已完整物化。
type Result struct {
	Files    []domain.FileEntry
	Problems []Problem
}

// ScanFiles 递归扫描 root 下的全部普通文件。
//
// 规则（硬约束）：
// - 先完整遍历、再返回：调用方在移动文件之前拿到的是快照，不会把本轮新建的类别目录再扫一遍
// - 只收集普通文件；目录只是遍历节点；符号链接/设备文件等一律忽略
// - exclude：需要跳过的绝对文件路径（本次运行的日志、报告、配置文件）
// - 输出按 RelPath 字典序排序，保证 dry-run 与日志顺序稳定
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
// ctx 被取消时立即停止遍历并返回 ctx.Err()。
func ScanFiles(ctx context.Context, root string, exclude []string) (Result, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(exclude)

	res := Result{Files: make([]domain.FileEntry, 0, 128)}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			// root 本身不可读：整体失败；子目录不可读：记录后跳过。
			if path == root {
				return walkErr
			}
			res.Problems = append(res.Problems, Problem{AbsPath: path, Err: walkErr})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := excluded[filepath.Clean(path)]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// 遍历与 stat 之间文件消失：记录后继续。
			res.Problems = append(res.Problems, Problem{AbsPath: path, Err: err})
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		name := d.Name()
		_, ext := domain.SplitName(name)
		res.Files = append(res.Files, domain.FileEntry{
			AbsPath: path,
			RelPath: rel,
			Name:    name,
			Ext:     strings.ToLower(ext),
			Size:    info.Size(),
			ModUnix: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].RelPath < res.Files[j].RelPath })
	sort.Slice(res.Problems, func(i, j int) bool { return res.Problems[i].AbsPath < res.Problems[j].AbsPath })
	return res, nil
}

func buildExcluded(paths []string) map[string]struct{} {
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out[filepath.Clean(p)] = struct{}{}
	}
	return out
}
