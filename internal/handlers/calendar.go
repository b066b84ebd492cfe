package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
)

// buildCalendarKeyboard собирает инлайн-календарь на месяц. Дни строго
// раньше сегодняшнего не выбираются (callback "ignore"). prefix —
// constants.CALLBACK_PREFIX_NEW_CALENDAR либо _EDIT_CALENDAR.
func buildCalendarKeyboard(prefix string, year int, month time.Month) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	// Заголовок с навигацией по месяцам
	header := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("‹", fmt.Sprintf("%sprev:%d:%d", prefix, year, int(month))),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", constants.MonthNames[month-1], year), prefix+"ignore"),
		tgbotapi.NewInlineKeyboardButtonData("›", fmt.Sprintf("%snext:%d:%d", prefix, year, int(month))),
	)
	rows = append(rows, header)

	var weekdays []tgbotapi.InlineKeyboardButton
	for _, wd := range constants.WeekdayNames {
		weekdays = append(weekdays, tgbotapi.NewInlineKeyboardButtonData(wd, prefix+"ignore"))
	}
	rows = append(rows, weekdays)

	today := time.Now()
	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// Понедельник — первый день недели
	offset := (int(first.Weekday()) + 6) % 7

	var week []tgbotapi.InlineKeyboardButton
	for i := 0; i < offset; i++ {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", prefix+"ignore"))
	}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		if date.Before(todayMidnight) {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData("·", prefix+"ignore"))
		} else {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(
				strconv.Itoa(day),
				fmt.Sprintf("%spick:%s", prefix, date.Format("02.01.2006")),
			))
		}
		if len(week) == 7 {
			rows = append(rows, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", prefix+"ignore"))
		}
		rows = append(rows, week)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseCalendarNav разбирает хвост callback-данных навигации календаря
// ("prev:2026:9" / "next:2026:9") и возвращает следующий показываемый месяц.
func parseCalendarNav(action string) (int, time.Month, bool) {
	parts := strings.Split(action, ":")
	if len(parts) != 3 {
		return 0, 0, false
	}
	year, errY := strconv.Atoi(parts[1])
	monthNum, errM := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || monthNum < 1 || monthNum > 12 {
		return 0, 0, false
	}
	shown := time.Date(year, time.Month(monthNum), 1, 0, 0, 0, 0, time.Local)
	if parts[0] == "prev" {
		shown = shown.AddDate(0, -1, 0)
	} else {
		shown = shown.AddDate(0, 1, 0)
	}
	return shown.Year(), shown.Month(), true
}
