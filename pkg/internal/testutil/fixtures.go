package testutil

import (
	"fmt"
	"time"

	"github.com/gongmax/lexitrail/pkg/db"
	"github.com/gongmax/lexitrail/pkg/logger"
	"gorm.io/gorm"
)

// ClearDatabase removes all fixture rows. Deletion walks the foreign-key
// chain child-first (recall_history -> user_words -> words -> wordsets ->
// users) so referential constraints are never violated.
func ClearDatabase(gdb *gorm.DB) error {
	models := []any{&db.RecallHistory{}, &db.UserWord{}, &db.Word{}, &db.Wordset{}, &db.User{}}
	for _, model := range models {
		if err := gdb.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			logger.Error("failed to clear table", "model", fmt.Sprintf("%T", model), "error", err)
			return err
		}
	}
	return nil
}

// CreateTestWord seeds a user, a wordset, and a word belonging to it. Each
// row is re-queried after insert so callers get the stored state, including
// generated IDs. An empty wordName gets a unique generated name.
func CreateTestWord(gdb *gorm.DB, userEmail, wordsetDescription, wordName string) (*db.User, *db.Wordset, *db.Word, error) {
	user := db.User{Email: userEmail}
	if err := gdb.Create(&user).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create user %s: %w", userEmail, err)
	}

	wordset := db.Wordset{Description: wordsetDescription}
	if err := gdb.Create(&wordset).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create wordset %q: %w", wordsetDescription, err)
	}
	if err := gdb.First(&wordset, "description = ?", wordsetDescription).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to retrieve wordset with description %q: %w", wordsetDescription, err)
	}

	if wordName == "" {
		wordName = fmt.Sprintf("Test Word %d", time.Now().UnixNano())
	}
	word := db.Word{
		Word:      wordName,
		WordsetID: wordset.WordsetID,
		Def1:      "Definition 1",
		Def2:      "Definition 2",
	}
	if err := gdb.Create(&word).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create word %q: %w", wordName, err)
	}

	if err := gdb.First(&user, "email = ?", userEmail).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to retrieve user with email %s: %w", userEmail, err)
	}
	if err := gdb.First(&wordset, "wordset_id = ?", wordset.WordsetID).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to retrieve wordset %d: %w", wordset.WordsetID, err)
	}
	if err := gdb.First(&word, "word_id = ?", word.WordID).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to retrieve word with name %q: %w", wordName, err)
	}

	return &user, &wordset, &word, nil
}

// CreateTestUserWord extends CreateTestWord with a user_words row linking the
// seeded user and word.
func CreateTestUserWord(gdb *gorm.DB, userEmail, wordsetDescription, wordName string) (*db.User, *db.Wordset, *db.Word, *db.UserWord, error) {
	user, wordset, word, err := CreateTestWord(gdb, userEmail, wordsetDescription, wordName)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	userWord := db.UserWord{
		UserID:      user.Email,
		WordID:      word.WordID,
		IsIncluded:  true,
		RecallState: 1,
	}
	if err := gdb.Create(&userWord).Error; err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create user word: %w", err)
	}
	if err := gdb.First(&userWord, "user_id = ? AND word_id = ?", user.Email, word.WordID).Error; err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to retrieve user word: %w", err)
	}

	return user, wordset, word, &userWord, nil
}
