package cmd

import (
	"os"

	"github.com/haierkeys/personal-notes/pkg/fileurl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultConfigPath 默认配置文件位置
const DefaultConfigPath = "config/config.yaml"

// configCandidates 未指定配置文件时依次查找
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	DefaultConfigPath,
}

// resolveConfig returns the config file to load, writing the embedded default when none exists
// resolveConfig 返回要加载的配置文件，找不到时写入内置默认配置
func resolveConfig(path string) (string, error) {
	if len(path) > 0 {
		if fileurl.IsDir(path) {
			return "", errors.Errorf("config path %s is a directory", path)
		}
		return path, nil
	}
	for _, f := range configCandidates {
		if fileurl.IsExist(f) && !fileurl.IsDir(f) {
			return f, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")

	if err := fileurl.CreatePath(DefaultConfigPath, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "config file auto create error")
	}
	if err := os.WriteFile(DefaultConfigPath, []byte(configDefault), 0666); err != nil {
		return "", errors.Wrap(err, "config file auto create writing error")
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", DefaultConfigPath))

	return DefaultConfigPath, nil
}
