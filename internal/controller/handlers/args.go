package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
)

// commandArgs возвращает аргументы команды: "/log 12 1,5" -> ["12", "1,5"]
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// parseHours принимает "2", "1.5" и "1,5"
func parseHours(value string) (float64, error) {
	hours, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || hours <= 0 {
		return 0, fmt.Errorf("invalid hours %q", value)
	}
	return hours, nil
}

// parseDate принимает 2026-10-14 и 14.10.2026
func parseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := timeutil.ParseDate(value, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("02.01.2006", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}
