// Package models contains data structures for the application's domain models.
package models

// PostType enumerates the kinds of feed entries.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
	PostTypeVideo PostType = "video"
	PostTypeAd    PostType = "ad"
)

// Valid reports whether t is one of the known post types.
func (t PostType) Valid() bool {
	switch t {
	case PostTypeText, PostTypeImage, PostTypeVideo, PostTypeAd:
		return true
	}
	return false
}

// Post represents a feed entry. The author fields are a snapshot taken when
// the post was written; readers refresh them from the user collection.
type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	UserAvatar  string    `json:"userAvatar"`
	Type        PostType  `json:"type"`
	Content     string    `json:"content"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	Likes       []string  `json:"likes"`
	Comments    []Comment `json:"comments"`
	Shares      int       `json:"shares"`
	Timestamp   int64     `json:"timestamp"`
	IsSponsored bool      `json:"isSponsored,omitempty"`
	// Version is bumped on every stored update; zero skips the stale check.
	Version int64 `json:"version"`
}

// LikedBy reports whether userID is in the like list.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike adds userID to the like list or removes every occurrence of it.
// It returns true when the post ends up liked.
func (p *Post) ToggleLike(userID string) bool {
	if p.LikedBy(userID) {
		kept := p.Likes[:0]
		for _, id := range p.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.Likes = kept
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// Comment is an entry in a post's comment thread.
type Comment struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}
