// users.go: CRUD and credential operations for dashboard accounts
package datastore

import (
	"fmt"
	"time"

	"github.com/noisewatch/noisewatch-go/internal/errors"
	"gorm.io/gorm"
)

// GetAllUsers retrieves all users, newest first. Password hashes ride along
// in the struct but are excluded from serialization by the model's json tag.
func (ds *DataStore) GetAllUsers() ([]User, error) {
	var users []User
	if err := ds.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("getting all users: %w", err)
	}
	return users, nil
}

// GetUser retrieves a user by ID.
func (ds *DataStore) GetUser(id uint) (User, error) {
	var user User
	if err := ds.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, errors.Newf("user %d not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return User{}, fmt.Errorf("getting user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by login name.
func (ds *DataStore) GetUserByUsername(username string) (User, error) {
	var user User
	if err := ds.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, errors.Newf("user %q not found", username).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return User{}, fmt.Errorf("getting user %q: %w", username, err)
	}
	return user, nil
}

// SaveUser inserts a new user. The caller is responsible for hashing the
// password before it reaches the datastore.
func (ds *DataStore) SaveUser(user *User) error {
	if user.Role == "" {
		user.Role = RoleUser
	}

	if err := ds.DB.Create(user).Error; err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// UpdateUser updates the mutable account fields. Password changes go through
// UpdateUserPassword.
func (ds *DataStore) UpdateUser(user *User) error {
	result := ds.DB.Model(&User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"username": user.Username,
			"name":     user.Name,
			"role":     user.Role,
		})
	if result.Error != nil {
		return fmt.Errorf("updating user %d: %w", user.ID, result.Error)
	}
	// MySQL counts rows changed, so rewriting identical values affects zero
	// rows on an existing account.
	if result.RowsAffected == 0 {
		if exists, err := ds.rowExists(&User{}, user.ID); err != nil {
			return fmt.Errorf("updating user %d: %w", user.ID, err)
		} else if !exists {
			return errors.Newf("user %d not found", user.ID).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
	}
	return nil
}

// DeleteUser removes a user by ID.
func (ds *DataStore) DeleteUser(id uint) error {
	result := ds.DB.Delete(&User{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.Newf("user %d not found", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash.
func (ds *DataStore) UpdateUserPassword(id uint, passwordHash string) error {
	result := ds.DB.Model(&User{}).
		Where("id = ?", id).
		Update("password", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("updating password for user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		if exists, err := ds.rowExists(&User{}, id); err != nil {
			return fmt.Errorf("updating password for user %d: %w", id, err)
		} else if !exists {
			return errors.Newf("user %d not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
	}
	return nil
}

// UpdateLastLogin stamps the user's last successful authentication time.
func (ds *DataStore) UpdateLastLogin(id uint) error {
	now := time.Now()
	if err := ds.DB.Model(&User{}).Where("id = ?", id).Update("last_login", now).Error; err != nil {
		return fmt.Errorf("updating last login for user %d: %w", id, err)
	}
	return nil
}

// CountUsers returns the total number of accounts, used to decide whether the
// initial administrator needs to be seeded.
func (ds *DataStore) CountUsers() (int64, error) {
	var count int64
	if err := ds.DB.Model(&User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
