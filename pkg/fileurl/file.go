package fileurl

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// TempFilePrefix prefix of temporary files created by WriteFileAtomic
// TempFilePrefix WriteFileAtomic 创建的临时文件前缀
const TempFilePrefix = ".notes-tmp-"

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的上级目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// WriteFileAtomic writes data to a temp file in the same directory and renames it over filename,
// so readers see either the old or the new content, never a partial write.
// WriteFileAtomic 先写入同目录临时文件再重命名，读取方只会看到完整的旧内容或新内容
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "create directory failed")
	}

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return errors.Wrap(err, "create temp file failed")
	}
	// No-op after a successful rename
	// 重命名成功后此处不会删除任何文件
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "write temp file failed")
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "sync temp file failed")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "close temp file failed")
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return errors.Wrap(err, "chmod temp file failed")
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return errors.Wrapf(err, "rename temp file to %s failed", filename)
	}
	return nil
}
