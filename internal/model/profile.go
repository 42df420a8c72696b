package model

import "time"

type ProfileVisibility string

// Persisted values, keep stable.
const (
	ProfileVisibilityPublic  ProfileVisibility = "public"
	ProfileVisibilityPrivate ProfileVisibility = "private"
)

// ParseProfileVisibility reports whether s is a known visibility.
func ParseProfileVisibility(s string) (ProfileVisibility, bool) {
	switch ProfileVisibility(s) {
	case ProfileVisibilityPublic, ProfileVisibilityPrivate:
		return ProfileVisibility(s), true
	}
	return "", false
}

// Profile belongs 1:1 to an account. AccountID never changes after creation.
type Profile struct {
	ID             int64             `json:"id"`
	AccountID      int64             `json:"account_id"`
	DisplayName    string            `json:"display_name"`
	AvatarURL      string            `json:"avatar_url"`
	Bio            string            `json:"bio"`
	City           string            `json:"city"`
	Country        string            `json:"country"`
	Timezone       string            `json:"timezone"`
	LearningTracks []string          `json:"learning_tracks"`
	Availability   string            `json:"availability"`
	GithubHandle   string            `json:"github_handle"`
	TwitterHandle  string            `json:"twitter_handle"`
	LinkedinHandle string            `json:"linkedin_handle"`
	Visibility     ProfileVisibility `json:"profile_visibility"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
