package models

// User represents a member of the network.
type User struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Email      string   `json:"email" yaml:"email"`
	Avatar     string   `json:"avatar" yaml:"avatar"`
	CoverPhoto string   `json:"coverPhoto" yaml:"coverPhoto"`
	Bio        string   `json:"bio,omitempty" yaml:"bio"`
	Friends    []string `json:"friends" yaml:"friends"`
}

// Session is the persisted reference to the logged-in user.
type Session struct {
	UserID    string `json:"userId"`
	StartedAt int64  `json:"startedAt"`
}
