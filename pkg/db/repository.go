// pkg/db/repository.go
package db

import (
	"errors"
	"fmt"

	"github.com/gongmax/lexitrail/pkg/config"
	"github.com/gongmax/lexitrail/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ErrUserExists is returned by CreateUser when the email is already taken.
var ErrUserExists = errors.New("user already exists")

// Export DB variable
var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) error {
	var err error
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	if err := DB.AutoMigrate(&User{}, &Wordset{}, &Word{}, &UserWord{}, &RecallHistory{}); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	return nil
}

// AllModels lists every schema type in foreign-key dependency order, least
// dependent first. Callers deleting rows must walk it in reverse.
func AllModels() []any {
	return []any{&User{}, &Wordset{}, &Word{}, &UserWord{}, &RecallHistory{}}
}

func GetUserByEmail(gdb *gorm.DB, email string) (*User, error) {
	var user User
	if err := gdb.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetAllUsers(gdb *gorm.DB) ([]User, error) {
	users := make([]User, 0)
	if err := gdb.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser inserts the user unless the email is already present. The
// pre-check keeps duplicate registration a non-error for callers.
func CreateUser(gdb *gorm.DB, email string) (*User, error) {
	var existing User
	err := gdb.First(&existing, "email = ?", email).Error
	if err == nil {
		return &existing, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := User{Email: email}
	if err := gdb.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserEmail rewrites the primary key in place. Rows in user_words and
// recall_history keep the old email; callers own that cleanup.
func UpdateUserEmail(gdb *gorm.DB, email, newEmail string) (*User, error) {
	if _, err := GetUserByEmail(gdb, email); err != nil {
		return nil, err
	}
	if err := gdb.Model(&User{}).Where("email = ?", email).
		Update("email", newEmail).Error; err != nil {
		logger.Error("failed to update user email", "email", email, "new_email", newEmail, "error", err)
		return nil, err
	}
	return &User{Email: newEmail}, nil
}

func DeleteUser(gdb *gorm.DB, email string) error {
	user, err := GetUserByEmail(gdb, email)
	if err != nil {
		return err
	}
	return gdb.Delete(user).Error
}
