package domain

import "time"

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

// Poll IDs are opaque strings. Votes reference options by index; the option
// order is fixed at creation and never changes afterwards.
type Poll struct {
	ID        string
	Question  string
	Options   []Option
	CreatedAt time.Time
}

type Option struct {
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

// TallyUpdate is the payload pushed to live sessions after a committed vote.
type TallyUpdate struct {
	PollID  string   `json:"pollId"`
	Options []Option `json:"options"`
}
