package handler

import "github.com/shopcore/storefront-api/internal/core/domain"

// updateMeRequest is a partial profile update. Omitted fields are kept;
// an empty avatarUrl or phoneNumber clears it.
type updateMeRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100" example:"Jane Doe"`
	AvatarURL   *string `json:"avatarUrl,omitempty" validate:"omitempty,clearable_url" example:"https://cdn.example.com/jane.png"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,clearable_e164" example:"+15551234567"`
}

func (r updateMeRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{
		Name:        r.Name,
		AvatarURL:   r.AvatarURL,
		PhoneNumber: r.PhoneNumber,
	}
}
