package model

type UserProfile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// Preferences groups the scalar settings stored under their own keys.
type Preferences struct {
	Profile              UserProfile `json:"userProfile"`
	Theme                string      `json:"theme"`
	NotificationsEnabled bool        `json:"notificationsEnabled"`
	Language             string      `json:"userLanguage"`
	Role                 string      `json:"userRole"`
}
