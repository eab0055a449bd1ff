package chat

import (
	"fmt"
	"time"

	"wkchat/internal/model"
)

// Group is a run of chats sharing an age label.
type Group struct {
	Label string              `json:"label"`
	Chats []model.ChatSummary `json:"chats"`
}

// AgeLabel buckets t relative to now by whole elapsed days.
func AgeLabel(t, now time.Time) string {
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// GroupByAge groups chats by AgeLabel, keeping the order in which labels first appear.
func GroupByAge(chats []model.ChatSummary, now time.Time) []Group {
	groups := []Group{}
	index := map[string]int{}
	for _, c := range chats {
		label := AgeLabel(c.Timestamp, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Chats = append(groups[i].Chats, c)
	}
	return groups
}
