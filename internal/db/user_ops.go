package db

import (
	"database/sql"
	"log"

	"poputchik/internal/models"
)

// CreateUser регистрирует пользователя или обновляет существующего.
// Мягко удаленный аккаунт (is_active=0) реактивируется с очисткой
// профильных полей; у активного просто обновляется username.
func CreateUser(userID int64, username string) error {
	var isActive sql.NullInt64
	err := DB.QueryRow("SELECT is_active FROM users WHERE user_id=$1", userID).Scan(&isActive)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("CreateUser: ошибка проверки существования пользователя %d: %v", userID, err)
		return err
	}

	if err == sql.ErrNoRows {
		_, err = DB.Exec(`
            INSERT INTO users (user_id, tg_username, display_name, is_active, created_at)
            VALUES ($1, $2, NULL, 1, NOW())`,
			userID, username)
		if err != nil {
			log.Printf("CreateUser: ошибка вставки нового пользователя %d: %v", userID, err)
			return err
		}
		log.Printf("Зарегистрирован новый пользователь %d", userID)
		return nil
	}

	if isActive.Valid && isActive.Int64 == 0 {
		_, err = DB.Exec(`
            UPDATE users
            SET is_active = 1,
                tg_username = $1,
                display_name = NULL,
                photo_file_id = NULL,
                bio = NULL,
                created_at = NOW()
            WHERE user_id = $2`,
			username, userID)
		if err != nil {
			log.Printf("CreateUser: ошибка реактивации пользователя %d: %v", userID, err)
			return err
		}
		log.Printf("Пользователь %d реактивирован после удаления аккаунта", userID)
		return nil
	}

	_, err = DB.Exec("UPDATE users SET tg_username=$1 WHERE user_id=$2", username, userID)
	if err != nil {
		log.Printf("CreateUser: ошибка обновления username пользователя %d: %v", userID, err)
	}
	return err
}

// GetUserByID извлекает пользователя по его идентификатору.
// Возвращает sql.ErrNoRows, если пользователь не найден.
func GetUserByID(userID int64) (models.User, error) {
	var u models.User
	var isActive int
	err := DB.QueryRow(`
        SELECT user_id, tg_username, display_name, photo_file_id, bio, is_active, created_at
        FROM users WHERE user_id=$1`, userID).Scan(
		&u.UserID, &u.TgUsername, &u.DisplayName, &u.PhotoFileID, &u.Bio, &isActive, &u.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("GetUserByID: ошибка получения пользователя %d: %v", userID, err)
		}
		return u, err
	}
	u.IsActive = isActive == 1
	return u, nil
}

// GetUserProfile собирает профиль пользователя со счетчиками маршрутов и поездок.
func GetUserProfile(userID int64) (models.UserProfile, error) {
	user, err := GetUserByID(userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	profile := models.UserProfile{
		UserID:      user.UserID,
		DisplayName: user.DisplayName.String,
		Bio:         user.Bio.String,
		PhotoFileID: user.PhotoFileID.String,
	}

	err = DB.QueryRow("SELECT COUNT(*) FROM routes WHERE user_id=$1 AND is_active=1", userID).Scan(&profile.RoutesCount)
	if err != nil {
		log.Printf("GetUserProfile: ошибка подсчета маршрутов пользователя %d: %v", userID, err)
		return profile, err
	}
	err = DB.QueryRow("SELECT COUNT(*) FROM requests WHERE passenger_id=$1", userID).Scan(&profile.TripsCount)
	if err != nil {
		log.Printf("GetUserProfile: ошибка подсчета поездок пользователя %d: %v", userID, err)
		return profile, err
	}
	return profile, nil
}

// UpdateUserDisplayName обновляет отображаемое имя.
func UpdateUserDisplayName(userID int64, displayName string) error {
	_, err := DB.Exec("UPDATE users SET display_name=$1 WHERE user_id=$2", displayName, userID)
	if err != nil {
		log.Printf("UpdateUserDisplayName: ошибка обновления имени пользователя %d: %v", userID, err)
	}
	return err
}

// UpdateUserBio обновляет описание профиля.
func UpdateUserBio(userID int64, bio string) error {
	_, err := DB.Exec("UPDATE users SET bio=$1 WHERE user_id=$2", bio, userID)
	if err != nil {
		log.Printf("UpdateUserBio: ошибка обновления bio пользователя %d: %v", userID, err)
	}
	return err
}

// UpdateUserPhoto обновляет фото профиля (telegram file_id).
func UpdateUserPhoto(userID int64, photoFileID string) error {
	_, err := DB.Exec("UPDATE users SET photo_file_id=$1 WHERE user_id=$2", photoFileID, userID)
	if err != nil {
		log.Printf("UpdateUserPhoto: ошибка обновления фото пользователя %d: %v", userID, err)
	}
	return err
}

// DeleteUser мягко удаляет пользователя: is_active=0 и каскадное удаление
// его маршрутов (вместе с заявками на них). Единственное место, где маршруты
// удаляются жестко.
func DeleteUser(userID int64) error {
	tx, err := DB.Begin()
	if err != nil {
		log.Printf("DeleteUser: ошибка начала транзакции для пользователя %d: %v", userID, err)
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec("UPDATE users SET is_active=0, display_name=NULL, photo_file_id=NULL, bio=NULL WHERE user_id=$1", userID)
	if err != nil {
		log.Printf("DeleteUser: ошибка деактивации пользователя %d: %v", userID, err)
		return err
	}
	_, err = tx.Exec("DELETE FROM requests WHERE route_id IN (SELECT id FROM routes WHERE user_id=$1)", userID)
	if err != nil {
		log.Printf("DeleteUser: ошибка удаления заявок на маршруты пользователя %d: %v", userID, err)
		return err
	}
	_, err = tx.Exec("DELETE FROM routes WHERE user_id=$1", userID)
	if err != nil {
		log.Printf("DeleteUser: ошибка удаления маршрутов пользователя %d: %v", userID, err)
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Printf("DeleteUser: ошибка фиксации транзакции для пользователя %d: %v", userID, err)
		return err
	}
	log.Printf("Пользователь %d деактивирован, маршруты удалены", userID)
	return nil
}
