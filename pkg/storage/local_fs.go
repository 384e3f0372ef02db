package storage

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/haierkeys/personal-notes/pkg/fileurl"

	"github.com/pkg/errors"
)

// LocalFS stores every key as one file under SavePath
// LocalFS 每个键保存为 SavePath 下的一个文件
type LocalFS struct {
	savePath string
	maxBytes int64
}

func NewLocalFS(cfg *Config) (*LocalFS, error) {
	if cfg.SavePath == "" {
		return nil, errors.New("local storage save-path is required")
	}
	if err := os.MkdirAll(cfg.SavePath, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "create local storage directory failed")
	}
	return &LocalFS{savePath: cfg.SavePath, maxBytes: cfg.MaxBytes}, nil
}

// keyPath escapes the key so any string maps to a single file name
func (p *LocalFS) keyPath(key string) string {
	return filepath.Join(p.savePath, url.PathEscape(key)+".json")
}

func (p *LocalFS) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(p.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read local storage failed")
	}
	return data, nil
}

func (p *LocalFS) Set(key string, value []byte) error {
	if err := checkQuota(p.maxBytes, value); err != nil {
		return err
	}
	return fileurl.WriteFileAtomic(p.keyPath(key), value, 0644)
}

func (p *LocalFS) Remove(key string) error {
	dst := p.keyPath(key)
	if fileurl.IsExist(dst) {
		return os.Remove(dst)
	}
	return nil
}
