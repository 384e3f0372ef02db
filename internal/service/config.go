// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// DefaultRemoteTimeout 默认远端调用超时
const DefaultRemoteTimeout = 10 * time.Second

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	RemoteTimeout time.Duration // Deadline of every remote call // 单次远端调用超时
	StrictLocal   bool          // Report failed local writes instead of ignoring them // 本地写入失败时返回错误而不是忽略
}

// CredentialsFunc returns the remote endpoint and access key as currently configured
// CredentialsFunc 返回当前配置的远端地址与访问密钥
type CredentialsFunc func() (endpoint, key string)

// StaticCredentials 固定的远端凭据
func StaticCredentials(endpoint, key string) CredentialsFunc {
	return func() (string, string) {
		return endpoint, key
	}
}

// IsConfigured reports whether both remote inputs are present
// IsConfigured 远端地址与密钥均非空时返回 true
func IsConfigured(endpoint, key string) bool {
	return endpoint != "" && key != ""
}
