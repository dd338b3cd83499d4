package services

import (
	"context"

	dto "equipcare-hub.com/equipcare-hub/internal/data_models"
	"equipcare-hub.com/equipcare-hub/internal/records"
	"equipcare-hub.com/equipcare-hub/internal/validators"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

type PreferenceService struct {
	profile       *records.Value[model.UserProfile]
	theme         *records.Value[string]
	notifications *records.Value[bool]
	language      *records.Value[string]
	role          *records.Value[string]
}

func NewPreferenceService(store *records.Store) *PreferenceService {
	return &PreferenceService{
		profile:       records.NewValue(store, constants.KeyUserProfile, model.UserProfile{}),
		theme:         records.NewValue(store, constants.KeyTheme, "light"),
		notifications: records.NewValue(store, constants.KeyNotifications, true),
		language:      records.NewValue(store, constants.KeyUserLanguage, "en"),
		role:          records.NewValue(store, constants.KeyUserRole, "technician"),
	}
}

func (s *PreferenceService) Get(ctx context.Context) model.Preferences {
	return model.Preferences{
		Profile:              s.profile.Get(ctx),
		Theme:                s.theme.Get(ctx),
		NotificationsEnabled: s.notifications.Get(ctx),
		Language:             s.language.Get(ctx),
		Role:                 s.role.Get(ctx),
	}
}

// Update writes each preference present in req under its own key.
func (s *PreferenceService) Update(ctx context.Context, req dto.PreferencesRequest) (model.Preferences, error) {
	if err := validators.ValidatePreferences(&req); err != nil {
		return model.Preferences{}, err
	}

	if p := req.Profile; p != nil {
		profile := model.UserProfile{
			Name:       p.Name,
			Email:      p.Email,
			Phone:      p.Phone,
			Department: p.Department,
			AvatarURL:  p.AvatarURL,
		}
		if err := s.profile.Set(ctx, profile); err != nil {
			return model.Preferences{}, err
		}
	}
	if req.Theme != nil {
		if err := s.theme.Set(ctx, *req.Theme); err != nil {
			return model.Preferences{}, err
		}
	}
	if req.NotificationsEnabled != nil {
		if err := s.notifications.Set(ctx, *req.NotificationsEnabled); err != nil {
			return model.Preferences{}, err
		}
	}
	if req.Language != nil {
		if err := s.language.Set(ctx, *req.Language); err != nil {
			return model.Preferences{}, err
		}
	}
	if req.Role != nil {
		if err := s.role.Set(ctx, *req.Role); err != nil {
			return model.Preferences{}, err
		}
	}

	return s.Get(ctx), nil
}
