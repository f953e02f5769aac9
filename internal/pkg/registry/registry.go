// Package registry 校验设备与用户是否存在
package registry

import (
	"Fieldclip/internal/api/config"
	"context"
	"fmt"
	"time"
)

// Registry 设备/用户注册中心
type Registry interface {
	DeviceExists(ctx context.Context, serial string) (bool, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

// New 根据配置创建注册中心
func New(cfg config.RegistryConfig) (Registry, error) {
	switch cfg.Mode {
	case "", "static":
		return NewStaticRegistry(cfg.Devices, cfg.Users), nil
	case "http":
		return NewHTTPRegistry(cfg.BaseURL, time.Duration(cfg.Timeout)*time.Second), nil
	default:
		return nil, fmt.Errorf("unsupported registry mode %q", cfg.Mode)
	}
}
