package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"poputchik/internal/constants"
)

var digitsOnlyRegex = regexp.MustCompile(`^\d+$`)

// usernameRegex — допустимый Telegram username (без "@").
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{4,31}$`)

// ValidateLocation проверяет название населенного пункта из текстового ввода.
func ValidateLocation(location string) (string, error) {
	location = strings.TrimSpace(location)
	if len([]rune(location)) < constants.MIN_LOCATION_LEN {
		return "", fmt.Errorf("название должно содержать не менее %d символов", constants.MIN_LOCATION_LEN)
	}
	return location, nil
}

// ParseDateDMY разбирает дату в формате ДД.ММ.ГГГГ.
func ParseDateDMY(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	parsed, err := time.ParseInLocation("02.01.2006", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("некорректный формат даты: '%s'. Ожидается ДД.ММ.ГГГГ", dateStr)
	}
	return parsed, nil
}

// ParseTimeShorthand разбирает время из свободного ввода и нормализует его
// к виду ЧЧ:ММ. Допустимы "ЧЧ:ММ", "Ч:ММ" и сокращения из 1-4 цифр:
//
//	"9"    -> 09:00
//	"14"   -> 14:00
//	"930"  -> 09:30
//	"1430" -> 14:30
func ParseTimeShorthand(timeStr string) (string, error) {
	timeStr = strings.TrimSpace(timeStr)
	errBadFormat := fmt.Errorf("некорректный формат времени: '%s'. Примеры: 09:30, 1430, 14", timeStr)

	var hour, minute int

	if strings.Contains(timeStr, ":") {
		parts := strings.Split(timeStr, ":")
		if len(parts) != 2 || !digitsOnlyRegex.MatchString(parts[0]) || !digitsOnlyRegex.MatchString(parts[1]) {
			return "", errBadFormat
		}
		if len(parts[0]) > 2 || len(parts[1]) != 2 {
			return "", errBadFormat
		}
		hour, _ = strconv.Atoi(parts[0])
		minute, _ = strconv.Atoi(parts[1])
	} else {
		if !digitsOnlyRegex.MatchString(timeStr) {
			return "", errBadFormat
		}
		switch len(timeStr) {
		case 1, 2: // час без минут
			hour, _ = strconv.Atoi(timeStr)
			minute = 0
		case 3: // ЧММ
			hour, _ = strconv.Atoi(timeStr[:1])
			minute, _ = strconv.Atoi(timeStr[1:])
		case 4: // ЧЧММ
			hour, _ = strconv.Atoi(timeStr[:2])
			minute, _ = strconv.Atoi(timeStr[2:])
		default:
			return "", errBadFormat
		}
	}

	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("некорректное время: час 0-23, минуты 0-59")
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// CombineDateTime собирает момент отправления из даты ДД.ММ.ГГГГ и
// времени ЧЧ:ММ в локальной таймзоне.
func CombineDateTime(dateDMY, timeHM string) (time.Time, error) {
	date, err := ParseDateDMY(dateDMY)
	if err != nil {
		return time.Time{}, err
	}
	parts := strings.Split(timeHM, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("некорректное время: '%s'", timeHM)
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("некорректное время: '%s'", timeHM)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.Local), nil
}

// IsPastDateTime сообщает, лежит ли момент отправления в прошлом
// относительно now. Нераспознаваемая пара дата/время считается прошлым.
func IsPastDateTime(dateDMY, timeHM string, now time.Time) bool {
	departure, err := CombineDateTime(dateDMY, timeHM)
	if err != nil {
		return true
	}
	return !departure.After(now)
}

// ValidatePrice разбирает цену поездки: целое число >= 0.
func ValidatePrice(priceStr string) (int, error) {
	priceStr = strings.TrimSpace(priceStr)
	price, err := strconv.Atoi(priceStr)
	if err != nil || price < 0 {
		return 0, fmt.Errorf("цена должна быть целым числом от 0")
	}
	return price, nil
}

// ValidateSeats разбирает число свободных мест: целое число >= 1.
func ValidateSeats(seatsStr string) (int, error) {
	seatsStr = strings.TrimSpace(seatsStr)
	seats, err := strconv.Atoi(seatsStr)
	if err != nil || seats < 1 {
		return 0, fmt.Errorf("число мест должно быть целым числом от 1")
	}
	return seats, nil
}

// IsValidTelegramUsername проверяет username (без "@") по правилам Telegram.
func IsValidTelegramUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
