package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeShorthand(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"9", "09:00", false},
		{"14", "14:00", false},
		{"735", "07:35", false},
		{"930", "09:30", false},
		{"1430", "14:30", false},
		{"0000", "00:00", false},
		{"09:30", "09:30", false},
		{"9:30", "09:30", false},
		{" 14:05 ", "14:05", false},
		{"2359", "23:59", false},
		{"24", "", true},
		{"2400", "", true},
		{"970", "", true},  // минуты 70
		{"12:60", "", true},
		{"12:5", "", true}, // минуты двумя цифрами
		{"12345", "", true},
		{"ab", "", true},
		{"", "", true},
		{"12:34:56", "", true},
	}
	for _, tc := range cases {
		got, err := ParseTimeShorthand(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
		} else {
			require.NoError(t, err, "input %q", tc.input)
			assert.Equal(t, tc.want, got, "input %q", tc.input)
		}
	}
}

func TestParseDateDMY(t *testing.T) {
	parsed, err := ParseDateDMY("15.09.2026")
	require.NoError(t, err)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.September, parsed.Month())
	assert.Equal(t, 15, parsed.Day())

	_, err = ParseDateDMY("2026-09-15")
	assert.Error(t, err)
	_, err = ParseDateDMY("32.01.2026")
	assert.Error(t, err)
	_, err = ParseDateDMY("")
	assert.Error(t, err)
}

func TestIsPastDateTime(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)

	assert.True(t, IsPastDateTime("15.09.2026", "09:59", now))
	// Точное совпадение с now тоже считается прошлым
	assert.True(t, IsPastDateTime("15.09.2026", "10:00", now))
	assert.False(t, IsPastDateTime("15.09.2026", "10:01", now))
	assert.False(t, IsPastDateTime("16.09.2026", "00:00", now))

	// Нераспознаваемая пара считается прошлым
	assert.True(t, IsPastDateTime("мусор", "10:00", now))
	assert.True(t, IsPastDateTime("15.09.2026", "мусор", now))
}

func TestValidateLocation(t *testing.T) {
	loc, err := ValidateLocation("  Тверь  ")
	require.NoError(t, err)
	assert.Equal(t, "Тверь", loc)

	// Длина считается в рунах, не в байтах
	loc, err = ValidateLocation("Ош")
	require.NoError(t, err)
	assert.Equal(t, "Ош", loc)

	_, err = ValidateLocation("Я")
	assert.Error(t, err)
	_, err = ValidateLocation("   ")
	assert.Error(t, err)
}

func TestValidatePrice(t *testing.T) {
	price, err := ValidatePrice(" 700 ")
	require.NoError(t, err)
	assert.Equal(t, 700, price)

	price, err = ValidatePrice("0")
	require.NoError(t, err)
	assert.Equal(t, 0, price)

	_, err = ValidatePrice("-1")
	assert.Error(t, err)
	_, err = ValidatePrice("семьсот")
	assert.Error(t, err)
}

func TestValidateSeats(t *testing.T) {
	seats, err := ValidateSeats("3")
	require.NoError(t, err)
	assert.Equal(t, 3, seats)

	_, err = ValidateSeats("0")
	assert.Error(t, err)
	_, err = ValidateSeats("-2")
	assert.Error(t, err)
	_, err = ValidateSeats("три")
	assert.Error(t, err)
}

func TestIsValidTelegramUsername(t *testing.T) {
	assert.True(t, IsValidTelegramUsername("ivan_driver"))
	assert.True(t, IsValidTelegramUsername("Abc12"))

	assert.False(t, IsValidTelegramUsername("abc"))          // короче 5
	assert.False(t, IsValidTelegramUsername("1ivan"))        // с цифры
	assert.False(t, IsValidTelegramUsername("@ivan_driver")) // с "@"
	assert.False(t, IsValidTelegramUsername("иван"))
}
