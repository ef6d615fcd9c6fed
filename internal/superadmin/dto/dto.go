package dto

import "github.com/fekuna/omnipos-backoffice-service/internal/model"

type BusinessDetail struct {
	*model.BusinessSummary
	Members []*model.TeamMember `json:"members"`
}

type UserView struct {
	*model.Profile
	BusinessName *string      `json:"business_name"`
	Roles        []model.Role `json:"roles"`
}

func NewUserView(u *model.PlatformUser) *UserView {
	return &UserView{Profile: &u.Profile, BusinessName: u.BusinessName, Roles: u.Roles()}
}
