package types

import "time"

// Kind identifies which content kind a cache and its API calls operate on.
type Kind string

const (
	KindTweets Kind = "tweets"
	KindDMs    Kind = "dms"
	KindLikes  Kind = "likes"
)

// Noun is the singular name used in log lines and progress output.
func (k Kind) Noun() string {
	switch k {
	case KindDMs:
		return "dm"
	case KindLikes:
		return "like"
	default:
		return "tweet"
	}
}

// ArchiveFile is the path of this kind's data file inside a vendor
// archive zip.
func (k Kind) ArchiveFile() string {
	switch k {
	case KindDMs:
		return "data/direct-messages.js"
	case KindLikes:
		return "data/like.js"
	default:
		return "data/tweets.js"
	}
}

// Item is one remote content unit: a tweet, a direct message, or a like.
// Ids are assigned by the remote service and increase over time, so id
// order stands in for creation order. SenderID, RecipientID and
// ConversationID are only set for the dm kind.
type Item struct {
	ID             uint64     `json:"id"`
	ScreenName     string     `json:"screen_name"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Text           string     `json:"text"`
	SenderID       *int64     `json:"sender_id,omitempty"`
	RecipientID    *int64     `json:"recipient_id,omitempty"`
	ConversationID *string    `json:"conversation_id,omitempty"`
	Deleted        bool       `json:"deleted"`
}
