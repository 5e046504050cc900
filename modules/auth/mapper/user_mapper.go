package mapper

import (
	"dateplanner-api/modules/auth/dto"
	"dateplanner-api/modules/auth/entity"
)

func ToUserDTO(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}
}
