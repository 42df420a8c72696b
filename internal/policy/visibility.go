package policy

import (
	"sort"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
)

// Level classifies how widely a profile field may be shown.
type Level int

const (
	LevelAlwaysPublic Level = iota + 1
	LevelMembersOnly
	LevelOwnerOnly
)

type Field string

const (
	FieldHandle      Field = "handle"
	FieldDisplayName Field = "display_name"
	FieldAvatarURL   Field = "avatar_url"
	FieldBio         Field = "bio"
	FieldJoinedAt    Field = "joined_at"

	FieldCity              Field = "city"
	FieldCountry           Field = "country"
	FieldTimezone          Field = "timezone"
	FieldLearningTracks    Field = "learning_tracks"
	FieldAvailability      Field = "availability"
	FieldGithubHandle      Field = "github_handle"
	FieldTwitterHandle     Field = "twitter_handle"
	FieldLinkedinHandle    Field = "linkedin_handle"
	FieldCompletedPrograms Field = "completed_programs"

	FieldAccountStatus     Field = "account_status"
	FieldProfileVisibility Field = "profile_visibility"
)

// fieldLevels is the single source of truth for profile field visibility.
// A field missing here is never shown.
var fieldLevels = map[Field]Level{
	FieldHandle:      LevelAlwaysPublic,
	FieldDisplayName: LevelAlwaysPublic,
	FieldAvatarURL:   LevelAlwaysPublic,
	FieldBio:         LevelAlwaysPublic,
	FieldJoinedAt:    LevelAlwaysPublic,

	FieldCity:              LevelMembersOnly,
	FieldCountry:           LevelMembersOnly,
	FieldTimezone:          LevelMembersOnly,
	FieldLearningTracks:    LevelMembersOnly,
	FieldAvailability:      LevelMembersOnly,
	FieldGithubHandle:      LevelMembersOnly,
	FieldTwitterHandle:     LevelMembersOnly,
	FieldLinkedinHandle:    LevelMembersOnly,
	FieldCompletedPrograms: LevelMembersOnly,

	FieldAccountStatus:     LevelOwnerOnly,
	FieldProfileVisibility: LevelOwnerOnly,
}

// KnownFields returns every field in the policy table, sorted.
func KnownFields() []Field {
	fields := make([]Field, 0, len(fieldLevels))
	for f := range fieldLevels {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// LevelOf returns the level of a field; ok is false for unknown names.
func LevelOf(field Field) (Level, bool) {
	lvl, ok := fieldLevels[field]
	return lvl, ok
}

// FieldVisible decides a single field. It is total: unknown fields are hidden.
func FieldVisible(field Field, visibility model.ProfileVisibility, viewerIsOwner bool) bool {
	lvl, ok := LevelOf(field)
	if !ok {
		return false
	}
	if viewerIsOwner {
		return true
	}

	switch lvl {
	case LevelAlwaysPublic:
		return true
	case LevelMembersOnly:
		return visibility == model.ProfileVisibilityPublic
	default:
		return false
	}
}

// ProfileSubject is everything the policy needs about the viewed profile.
type ProfileSubject struct {
	Profile           *model.Profile
	Owner             *model.Account
	CompletedPrograms int
}

// ProfileView maps every known field to its value, or nil when hidden.
type ProfileView map[Field]any

// FilterProfile applies the visibility table for a viewer. viewer is nil for
// anonymous requests.
func FilterProfile(subject ProfileSubject, viewer *model.Account) ProfileView {
	isOwner := viewer != nil && viewer.ID == subject.Owner.ID
	values := profileValues(subject)

	fields := KnownFields()
	view := make(ProfileView, len(fields))
	for _, field := range fields {
		if FieldVisible(field, subject.Profile.Visibility, isOwner) {
			view[field] = values[field]
		} else {
			view[field] = nil
		}
	}
	return view
}

func profileValues(s ProfileSubject) map[Field]any {
	p := s.Profile
	tracks := p.LearningTracks
	if tracks == nil {
		tracks = []string{}
	}

	return map[Field]any{
		FieldHandle:      s.Owner.HandleOrEmpty(),
		FieldDisplayName: p.DisplayName,
		FieldAvatarURL:   p.AvatarURL,
		FieldBio:         p.Bio,
		FieldJoinedAt:    s.Owner.CreatedAt.UTC().Format(time.RFC3339),

		FieldCity:              p.City,
		FieldCountry:           p.Country,
		FieldTimezone:          p.Timezone,
		FieldLearningTracks:    tracks,
		FieldAvailability:      p.Availability,
		FieldGithubHandle:      p.GithubHandle,
		FieldTwitterHandle:     p.TwitterHandle,
		FieldLinkedinHandle:    p.LinkedinHandle,
		FieldCompletedPrograms: s.CompletedPrograms,

		FieldAccountStatus:     string(s.Owner.Status),
		FieldProfileVisibility: string(p.Visibility),
	}
}
