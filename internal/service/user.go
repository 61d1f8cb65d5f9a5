package service

import (
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/storage"
)

// UserService 用户资料读写。email 创建后不可变，资料更新
// 只接受可选字段。
type UserService struct {
	users storage.UserRepository
	log   *zap.Logger
}

// NewUserService 创建用户服务。
func NewUserService(users storage.UserRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, log: log}
}

// Get 根据 ID 获取用户。
func (s *UserService) Get(id string) (*domain.User, error) {
	return s.users.GetUserByID(id)
}

// UpdateProfile 应用资料的可选字段更新。
func (s *UserService) UpdateProfile(id string, update domain.ProfileUpdate) error {
	if update.IsEmpty() {
		return ErrNoFieldsToUpdate
	}

	user, err := s.users.GetUserByID(id)
	if err != nil {
		return err
	}

	if update.Nickname != nil {
		user.Nickname = *update.Nickname
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Skills != nil {
		user.Skills = *update.Skills
	}

	return s.users.UpdateUser(user)
}
