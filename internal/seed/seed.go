// Package seed provides the default dataset a fresh store starts with and
// helpers to generate demo data. The generators are intended for
// development and testing only.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"socialsphere/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type seedComment struct {
	ID         string        `yaml:"id"`
	UserID     string        `yaml:"userId"`
	UserName   string        `yaml:"userName"`
	UserAvatar string        `yaml:"userAvatar"`
	Text       string        `yaml:"text"`
	Age        time.Duration `yaml:"age"`
}

type seedPost struct {
	ID          string        `yaml:"id"`
	UserID      string        `yaml:"userId"`
	UserName    string        `yaml:"userName"`
	UserAvatar  string        `yaml:"userAvatar"`
	Type        string        `yaml:"type"`
	Content     string        `yaml:"content"`
	MediaURL    string        `yaml:"mediaUrl"`
	Likes       []string      `yaml:"likes"`
	Comments    []seedComment `yaml:"comments"`
	Shares      int           `yaml:"shares"`
	IsSponsored bool          `yaml:"isSponsored"`
	Age         time.Duration `yaml:"age"`
}

type dataset struct {
	Users []models.User `yaml:"users"`
	Posts []seedPost    `yaml:"posts"`
}

var defaults = mustParse(defaultsYAML)

func mustParse(raw []byte) dataset {
	var d dataset
	if err := yaml.Unmarshal(raw, &d); err != nil {
		panic(fmt.Sprintf("seed: invalid defaults.yaml: %v", err))
	}
	return d
}

// Users returns a fresh copy of the default users.
func Users() []models.User {
	users := make([]models.User, len(defaults.Users))
	for i, u := range defaults.Users {
		u.Friends = append([]string{}, u.Friends...)
		users[i] = u
	}
	return users
}

// Posts returns the default posts with timestamps relative to now.
func Posts(now time.Time) []models.Post {
	posts := make([]models.Post, 0, len(defaults.Posts))
	for _, sp := range defaults.Posts {
		p := models.Post{
			ID:          sp.ID,
			UserID:      sp.UserID,
			UserName:    sp.UserName,
			UserAvatar:  sp.UserAvatar,
			Type:        models.PostType(sp.Type),
			Content:     sp.Content,
			MediaURL:    sp.MediaURL,
			Likes:       append([]string{}, sp.Likes...),
			Comments:    make([]models.Comment, 0, len(sp.Comments)),
			Shares:      sp.Shares,
			Timestamp:   now.Add(-sp.Age).UnixMilli(),
			IsSponsored: sp.IsSponsored,
			Version:     1,
		}
		for _, sc := range sp.Comments {
			p.Comments = append(p.Comments, models.Comment{
				ID:         sc.ID,
				UserID:     sc.UserID,
				UserName:   sc.UserName,
				UserAvatar: sc.UserAvatar,
				Text:       sc.Text,
				Timestamp:  now.Add(-sc.Age).UnixMilli(),
			})
		}
		posts = append(posts, p)
	}
	return posts
}
