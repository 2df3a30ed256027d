package db

import (
	"errors"

	"gorm.io/gorm"

	"taskboard/internal/models"
)

// UserPatch holds the patchable user fields. Nil fields are left alone.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Role         *string
}

// CreateUser registers a new user. The password must already be hashed.
func CreateUser(username, passwordHash string) (*models.User, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}

	// Uniqueness check and insert share one transaction so two concurrent
	// registrations for the same name cannot both pass the check.
	err := DB.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", username).First(&existing).Error
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID fetches a single user
func GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername fetches a single user by unique username
func GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsers retrieves all users
func GetUsers() ([]models.User, error) {
	var users []models.User
	if err := DB.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies a partial update to a user
func UpdateUser(id uint, patch UserPatch) (*models.User, error) {
	var updated *models.User
	err := DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if patch.Username != nil && *patch.Username != user.Username {
			var existing models.User
			err := tx.Where("username = ?", *patch.Username).First(&existing).Error
			if err == nil {
				return ErrUsernameTaken
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			user.Username = *patch.Username
		}
		if patch.PasswordHash != nil {
			user.PasswordHash = *patch.PasswordHash
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}

		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes a user and its board memberships. Tasks the user
// created keep a dangling creator reference rather than being deleted.
func DeleteUser(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.BoardUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// SetUserAvatar records a stored avatar reference on the user
func SetUserAvatar(id uint, path string) (*models.User, error) {
	user, err := GetUserByID(id)
	if err != nil {
		return nil, err
	}
	user.AvatarPath = path
	if err := DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ClearUserAvatar drops the avatar reference, returning the old path so
// the caller can remove the blob
func ClearUserAvatar(id uint) (string, error) {
	user, err := GetUserByID(id)
	if err != nil {
		return "", err
	}
	if user.AvatarPath == "" {
		return "", ErrUserNoAvatar
	}
	old := user.AvatarPath
	user.AvatarPath = ""
	if err := DB.Save(user).Error; err != nil {
		return "", err
	}
	return old, nil
}
