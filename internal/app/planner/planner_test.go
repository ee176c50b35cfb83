package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/extsort/internal/domain"
)

func TestResolve_FreeName(t *testing.T) {
	root := t.TempDir()
	r := NewResolver()

	res, err := r.Resolve(req(root, "a.jpg", "Images"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Images", "a.jpg"), res.DstAbs)
	assert.False(t, res.NoOp)
	assert.False(t, res.Collision)
	assert.Empty(t, res.Occupied)
}

func TestResolve_NoOpWhenAlreadyPlaced(t *testing.T) {
	root := t.TempDir()
	r := NewResolver()

	rq := domain.MoveRequest{
		SrcAbs:  filepath.Join(root, "Images", "a.jpg"),
		DstDir:  DestDir(root, "Images"),
		DstName: "a.jpg",
	}
	touch(t, rq.SrcAbs)

	res, err := r.Resolve(rq)
	require.NoError(t, err)
	assert.True(t, res.NoOp)
	assert.Equal(t, rq.SrcAbs, res.DstAbs)
}

func TestResolve_CollisionUsesBackupSuffix(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Documents", "report.pdf"))
	r := NewResolver()

	res, err := r.Resolve(req(root, "report.pdf", "Documents"))
	require.NoError(t, err)
	assert.True(t, res.Collision)
	assert.Equal(t, filepath.Join(root, "Documents", "report_backup.pdf"), res.DstAbs)
	assert.Equal(t, []string{filepath.Join(root, "Documents", "report.pdf")}, res.Occupied)
}

func TestResolve_DoubleCollisionIncrements(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Documents", "report.pdf"))
	touch(t, filepath.Join(root, "Documents", "report_backup.pdf"))
	touch(t, filepath.Join(root, "Documents", "report_backup_2.pdf"))
	r := NewResolver()

	res, err := r.Resolve(req(root, "report.pdf", "Documents"))
	require.NoError(t, err)
	assert.True(t, res.Collision)
	assert.Equal(t, filepath.Join(root, "Documents", "report_backup_3.pdf"), res.DstAbs)
	assert.Len(t, res.Occupied, 3)
}

func TestResolve_ReservationsWithoutDiskWrites(t *testing.T) {
	// dry-run 不落盘：同名的第二个文件也必须算作冲突。
	root := t.TempDir()
	r := NewResolver()

	first, err := r.Resolve(domain.MoveRequest{SrcAbs: filepath.Join(root, "x", "a.txt"), DstDir: DestDir(root, "Documents"), DstName: "a.txt"})
	require.NoError(t, err)
	second, err := r.Resolve(domain.MoveRequest{SrcAbs: filepath.Join(root, "y", "a.txt"), DstDir: DestDir(root, "Documents"), DstName: "a.txt"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "Documents", "a.txt"), first.DstAbs)
	assert.Equal(t, filepath.Join(root, "Documents", "a_backup.txt"), second.DstAbs)
	assert.True(t, second.Collision)

	r.Reserve(filepath.Join(root, "Documents", "a_backup_2.txt"))
	third, err := r.Resolve(domain.MoveRequest{SrcAbs: filepath.Join(root, "z", "a.txt"), DstDir: DestDir(root, "Documents"), DstName: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Documents", "a_backup_3.txt"), third.DstAbs)
}

func TestResolve_ExistsErrorPropagates(t *testing.T) {
	r := NewResolver()
	r.exists = func(string) (bool, error) { return false, os.ErrPermission }

	_, err := r.Resolve(req(t.TempDir(), "a.jpg", "Images"))
	require.ErrorIs(t, err, os.ErrPermission)
}

func TestResolve_GivesUpAfterMaxAttempts(t *testing.T) {
	r := NewResolver()
	r.exists = func(string) (bool, error) { return true, nil }

	res, err := r.Resolve(req(t.TempDir(), "a.jpg", "Images"))
	require.ErrorIs(t, err, ErrNoFreeName)
	assert.Len(t, res.Occupied, maxBackupAttempts+1)
}

func TestCandidateName(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want string
	}{
		{"report.pdf", 0, "report.pdf"},
		{"report.pdf", 1, "report_backup.pdf"},
		{"report.pdf", 2, "report_backup_2.pdf"},
		{"Photo.JPG", 1, "Photo_backup.JPG"},
		{"archive.tar.gz", 1, "archive.tar_backup.gz"},
		{"README", 1, "README_backup"},
		{".bashrc", 1, ".bashrc_backup"},
		{".config.yaml", 1, ".config_backup.yaml"},
		{"notes.", 1, "notes._backup"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, candidateName(c.name, c.n), "name=%q n=%d", c.name, c.n)
	}
}

func req(root, name, category string) domain.MoveRequest {
	return domain.MoveRequest{
		SrcAbs:   filepath.Join(root, name),
		DstDir:   DestDir(root, category),
		DstName:  name,
		Category: category,
	}
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
