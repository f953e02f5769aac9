package registry

import (
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPRegistry 通过远程接口查询，200 存在，404 不存在
type HTTPRegistry struct {
	client *resty.Client
}

func NewHTTPRegistry(baseURL string, timeout time.Duration) *HTTPRegistry {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPRegistry{client: client}
}

func (r *HTTPRegistry) DeviceExists(ctx context.Context, serial string) (bool, error) {
	return r.exists(ctx, "/devices/"+url.PathEscape(serial))
}

func (r *HTTPRegistry) UserExists(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, "/users/"+url.PathEscape(userID))
}

func (r *HTTPRegistry) exists(ctx context.Context, path string) (bool, error) {
	resp, err := r.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return false, fmt.Errorf("registry request %s: %w", path, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		log.WarnContext(ctx, "registry unexpected status", "path", path, "status", resp.StatusCode())
		return false, fmt.Errorf("registry request %s: unexpected status %d", path, resp.StatusCode())
	}
}
