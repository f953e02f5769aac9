package util

import (
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// SplitTags 拆分逗号分隔的标签，忽略空项，入参已是解码后的查询值
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}

// ParseDate 解析 YYYY-MM-DD 为当天 UTC 零点，空串返回 nil
func ParseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseID 解析正整数 ID
func ParseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
