package youtube

import "strings"

// YouTube rejects updates whose combined tag length exceeds 500 characters.
const maxTagsLength = 500

// LimitTags splits a comma-separated keyword string into a tag list whose
// combined length stays within limit. Tags containing spaces cost two extra
// characters because the API counts their surrounding quotes, and each tag
// after the first costs one more for the separator. Tags that would cross
// the limit are dropped from that point on.
func LimitTags(keywords string, limit int) []string {
	var tags []string
	length := 0
	for _, raw := range strings.Split(keywords, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		cost := len(tag)
		if len(tags) > 0 {
			cost++
		}
		if strings.Contains(tag, " ") {
			cost += 2
		}
		if length+cost > limit {
			break
		}
		tags = append(tags, tag)
		length += cost
	}
	return tags
}
