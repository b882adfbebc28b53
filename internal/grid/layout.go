// Package grid раскладывает занятия по сетке дня или недели и рисует
// недельную сетку в PNG.
package grid

import (
	"sort"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
)

// Mode - вид сетки
type Mode string

const (
	ModeDay  Mode = "day"
	ModeWeek Mode = "week"
)

// Config - параметры сетки. Это вопрос отображения, а не корректности
type Config struct {
	StartHour int     `yaml:"start_hour" json:"start_hour"`
	EndHour   int     `yaml:"end_hour" json:"end_hour"`
	RowHeight float64 `yaml:"row_height" json:"row_height"` // высота часа в пикселях
}

// DefaultConfig - сетка 07:00-22:00, 48px на час
func DefaultConfig() Config {
	return Config{StartHour: 7, EndHour: 22, RowHeight: 48}
}

// Rows возвращает количество часовых строк
func (c Config) Rows() int {
	if c.EndHour <= c.StartHour {
		return 0
	}
	return c.EndHour - c.StartHour
}

// Block - положение занятия на сетке
type Block struct {
	LessonID     int64              `json:"lesson_id"`
	PackageID    int64              `json:"package_id"`
	InstructorID int64              `json:"instructor_id"`
	Status       model.LessonStatus `json:"status"`
	Start        time.Time          `json:"start"`
	End          time.Time          `json:"end"`
	Column       int                `json:"column"`        // 0 в дневном виде, 0..6 (Пн..Вс) в недельном
	Top          float64            `json:"top"`           // пиксели от начала сетки
	Height       float64            `json:"height"`        // пиксели
	LeftPercent  float64            `json:"left_percent"`  // горизонтальное смещение колонки
	WidthPercent float64            `json:"width_percent"` // 100 в дневном виде, 100/7 в недельном
}

// Layout раскладывает занятия, начинающиеся в [rangeStart, rangeStart+период).
// Для недельного вида rangeStart должен быть понедельником.
func Layout(mode Mode, rangeStart time.Time, lessons []*model.Lesson, cfg Config, loc *time.Location) []Block {
	columns := 1
	rangeEnd := rangeStart.AddDate(0, 0, 1)
	if mode == ModeWeek {
		columns = timeutil.DaysInWeek
		rangeEnd = rangeStart.AddDate(0, 0, timeutil.DaysInWeek)
	}
	width := 100 / float64(columns)

	blocks := make([]Block, 0, len(lessons))
	for _, lesson := range lessons {
		if lesson == nil || lesson.SessionDate.Before(rangeStart) || !lesson.SessionDate.Before(rangeEnd) {
			continue
		}

		column := 0
		if mode == ModeWeek {
			column = timeutil.WeekdayIndex(lesson.SessionDate.In(loc))
		}

		blocks = append(blocks, Block{
			LessonID:     lesson.ID,
			PackageID:    lesson.PackageID,
			InstructorID: lesson.InstructorID,
			Status:       lesson.Status,
			Start:        lesson.SessionDate,
			End:          lesson.End(),
			Column:       column,
			Top:          Top(lesson.SessionDate, cfg, loc),
			Height:       lesson.Hours() * cfg.RowHeight,
			LeftPercent:  float64(column) * width,
			WidthPercent: width,
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Column != blocks[j].Column {
			return blocks[i].Column < blocks[j].Column
		}
		return blocks[i].Start.Before(blocks[j].Start)
	})
	return blocks
}

// Top = (час - начало сетки) * высота строки + минуты/60 * высота строки
func Top(start time.Time, cfg Config, loc *time.Location) float64 {
	return timeutil.HourOffset(start, cfg.StartHour, loc) * cfg.RowHeight
}
