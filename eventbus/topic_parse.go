package eventbus

import (
	"strings"
	"time"
)

// ParseRetryDelayFromTopicName extracts the retry delay embedded in a retry
// topic name, e.g. "post_created_queue.retry.30s" -> 30s.
func ParseRetryDelayFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	durStr := name[idx+7:]
	d, err := time.ParseDuration(durStr)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
