package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFiles_RecursiveSortedSnapshot(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "b.mp3"))
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "sub", "deep", "c.xyz"))
	touch(t, filepath.Join(root, "Images", "d.png"))
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	got, err := ScanFiles(context.Background(), root, nil)
	require.NoError(t, err)
	require.Empty(t, got.Problems)

	rels := make([]string, 0, len(got.Files))
	for _, f := range got.Files {
		rels = append(rels, f.RelPath)
	}
	assert.Equal(t, []string{
		filepath.Join("Images", "d.png"),
		"a.jpg",
		"b.mp3",
		filepath.Join("sub", "deep", "c.xyz"),
	}, rels)

	c := got.Files[3]
	assert.Equal(t, filepath.Join(root, "sub", "deep", "c.xyz"), c.AbsPath)
	assert.Equal(t, "c.xyz", c.Name)
	assert.Equal(t, ".xyz", c.Ext)
	assert.Equal(t, int64(1), c.Size)
}

func TestScanFiles_ExtLowercasedAndNoExt(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "X.JPG"))
	touch(t, filepath.Join(root, "README"))
	touch(t, filepath.Join(root, ".bashrc"))

	got, err := ScanFiles(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, got.Files, 3)

	// 点文件没有扩展名，与改名时的 stem/扩展名规则一致。
	assert.Equal(t, ".bashrc", got.Files[0].Name)
	assert.Equal(t, "", got.Files[0].Ext)
	assert.Equal(t, "README", got.Files[1].Name)
	assert.Equal(t, "", got.Files[1].Ext)
	assert.Equal(t, "X.JPG", got.Files[2].Name)
	assert.Equal(t, ".jpg", got.Files[2].Ext)
}

func TestScanFiles_ExcludedPaths(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "info.log"))
	touch(t, filepath.Join(root, "keep.log"))

	got, err := ScanFiles(context.Background(), root, []string{filepath.Join(root, "info.log"), "  "})
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "keep.log", got.Files[0].Name)
}

func TestScanFiles_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink 需要额外权限")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "real.txt"))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	got, err := ScanFiles(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "real.txt", got.Files[0].Name)
}

func TestScanFiles_UnreadableSubdirIsProblemNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("需要非 root 的 unix 权限语义")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "ok.txt"))
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, "hidden.txt"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got, err := ScanFiles(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	require.Len(t, got.Problems, 1)
	assert.Equal(t, locked, got.Problems[0].AbsPath)
}

func TestScanFiles_MissingRoot(t *testing.T) {
	_, err := ScanFiles(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestScanFiles_StopsWhenCanceled(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "sub", "b.mp3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := ScanFiles(ctx, root, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got.Files)
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
