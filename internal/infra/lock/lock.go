// Package lock 保证同一目录树同一时刻只有一次真实运行。
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy 表示另一次运行正持有同一根目录的锁。
var ErrBusy = errors.New("another extsort run is active for this directory")

// RootLock 是按根目录绝对路径派生的文件锁。
// 锁文件放在 dir（默认系统临时目录）下，不污染被整理的目录树。
type RootLock struct {
	path string
	fl   *flock.Flock
}

// PathFor 返回 root 对应的锁文件路径。
func PathFor(dir, root string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(dir, "extsort-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire 非阻塞地获取锁；已被占用时返回 ErrBusy。
func Acquire(dir, root string) (*RootLock, error) {
	p := PathFor(dir, root)
	fl := flock.New(p)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", p, err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return &RootLock{path: p, fl: fl}, nil
}

// Path 返回锁文件路径。
func (l *RootLock) Path() string { return l.path }

// Release 释放锁。锁文件保留在原处：删除后再加锁的进程可能锁住不同的 inode。
func (l *RootLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	err := l.fl.Unlock()
	l.fl = nil
	return err
}
