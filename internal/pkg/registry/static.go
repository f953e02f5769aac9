package registry

import "context"

// StaticRegistry 基于配置白名单，白名单为空时全部放行
type StaticRegistry struct {
	devices map[string]struct{}
	users   map[string]struct{}
}

func NewStaticRegistry(devices, users []string) *StaticRegistry {
	return &StaticRegistry{
		devices: toSet(devices),
		users:   toSet(users),
	}
}

func (r *StaticRegistry) DeviceExists(_ context.Context, serial string) (bool, error) {
	return contains(r.devices, serial), nil
}

func (r *StaticRegistry) UserExists(_ context.Context, userID string) (bool, error) {
	return contains(r.users, userID), nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, key string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[key]
	return ok
}
