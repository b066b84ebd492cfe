package utils

import (
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"
)

// GenerateRouteLink генерирует deep-link на карточку маршрута.
// botUsername передается из конфигурации.
func GenerateRouteLink(botUsername string, routeID int64) (string, error) {
	if botUsername == "" {
		log.Println("GenerateRouteLink: botUsername не предоставлен.")
		return "", fmt.Errorf("имя пользователя бота не настроено")
	}
	if routeID == 0 {
		return "", fmt.Errorf("невалидный ID маршрута для ссылки")
	}
	return fmt.Sprintf("https://t.me/%s?start=route_%d", botUsername, routeID), nil
}

// GenerateRouteQRCode генерирует QR-код со ссылкой на маршрут (PNG).
func GenerateRouteQRCode(botUsername string, routeID int64) ([]byte, error) {
	link, err := GenerateRouteLink(botUsername, routeID)
	if err != nil {
		return nil, err
	}

	// qrcode.Medium — уровень коррекции ошибок, 256 — размер в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GenerateRouteQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}

// GenerateDriverChatLink генерирует прямую ссылку на личный чат с водителем.
func GenerateDriverChatLink(username string) (string, error) {
	if !IsValidTelegramUsername(username) {
		return "", fmt.Errorf("у водителя не задан публичный username")
	}
	return "https://t.me/" + username, nil
}
