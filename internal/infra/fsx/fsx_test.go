package fsx

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplace_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicReplace(dir, "a.json", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomicReplace(dir, "a.json", []byte("new")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "new" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.json.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomicReplace_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomicReplace(dir, "a.json", []byte("hello")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("不应留下任何文件：%v", entries)
	}
}

func TestRenameNoReplace_MovesWhenFree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	if err := RenameNoReplace(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("源文件应已不存在：%v", err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "a" {
		t.Fatalf("目标内容不一致：%q", string(b))
	}
}

func TestRenameNoReplace_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if err := os.WriteFile(dst, []byte("b"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	err := RenameNoReplace(src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("期望 ErrExist，实际：%T %v", err, err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "b" {
		t.Fatalf("目标文件被覆盖：%q", string(b))
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("源文件不应被移动：%v", err)
	}
}

func TestRenameCheckThenMove_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if err := os.WriteFile(dst, []byte("b"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	if err := renameCheckThenMove(src, dst); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("期望 ErrExist，实际：%T %v", err, err)
	}
}

func TestEnsureDir_IdempotentAndConflict(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Images")

	if err := EnsureDir(dir); err != nil {
		t.Fatalf("首次创建失败：%v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("重复创建应成功：%v", err)
	}

	blocked := filepath.Join(root, "Audio")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	err := EnsureDir(blocked)
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestProbeDir_ReadOnly(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Video")

	ok, err := ProbeDir(dir)
	if err != nil || ok {
		t.Fatalf("不存在的目录：ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("ProbeDir 不应创建目录：%v", err)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x")

	if ok, err := Exists(p); err != nil || ok {
		t.Fatalf("期望不存在：ok=%v err=%v", ok, err)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if ok, err := Exists(p); err != nil || !ok {
		t.Fatalf("期望存在：ok=%v err=%v", ok, err)
	}
}
