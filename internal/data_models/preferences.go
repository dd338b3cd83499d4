package dto

// PreferencesRequest updates only the fields that are present.
type PreferencesRequest struct {
	Profile              *ProfileRequest `json:"userProfile"`
	Theme                *string         `json:"theme" validate:"omitempty,oneof=light dark system"`
	NotificationsEnabled *bool           `json:"notificationsEnabled"`
	Language             *string         `json:"userLanguage" validate:"omitempty,min=2,max=10"`
	Role                 *string         `json:"userRole" validate:"omitempty,oneof=admin supervisor technician"`
}

type ProfileRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	AvatarURL  string `json:"avatarUrl"`
}
