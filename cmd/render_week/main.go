package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
	"golang.org/x/text/language"
)

// Рисует демонстрационную неделю без базы и бота
func main() {
	output := flag.String("o", "week.png", "файл для PNG")
	date := flag.String("date", "", "любой день недели, 2006-01-02 (по умолчанию сегодня)")
	lang := flag.String("lang", "ru", "язык подписей")
	flag.Parse()

	anchor := time.Now()
	if *date != "" {
		parsed, err := timeutil.ParseDate(*date, time.Local)
		if err != nil {
			fmt.Printf("Неверная дата: %v\n", err)
			os.Exit(1)
		}
		anchor = parsed
	}
	monday := timeutil.StartOfWeek(anchor, time.Local)

	at := func(day, hour, minute int) time.Time {
		return monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	lessons := []*model.Lesson{
		{ID: 1, PackageID: 1, InstructorID: 1, SessionDate: at(0, 9, 0), DurationMinutes: 90, Status: model.LessonStatusCompleted},
		{ID: 2, PackageID: 2, InstructorID: 1, SessionDate: at(0, 14, 0), DurationMinutes: 120, Status: model.LessonStatusCompleted, Location: "Автодром"},
		{ID: 3, PackageID: 3, InstructorID: 1, SessionDate: at(1, 10, 30), DurationMinutes: 60, Status: model.LessonStatusCancelled},
		{ID: 4, PackageID: 1, InstructorID: 1, SessionDate: at(2, 8, 0), DurationMinutes: 120, Status: model.LessonStatusPlanned},
		{ID: 5, PackageID: 2, InstructorID: 1, SessionDate: at(2, 16, 0), DurationMinutes: 90, Status: model.LessonStatusPlanned},
		{ID: 6, PackageID: 3, InstructorID: 1, SessionDate: at(4, 11, 0), DurationMinutes: 180, Status: model.LessonStatusPlanned, Location: "Город"},
		{ID: 7, PackageID: 1, InstructorID: 1, SessionDate: at(5, 9, 0), DurationMinutes: 60, Status: model.LessonStatusPlanned},
	}
	labels := map[int64]string{1: "Иванов П.", 2: "Смирнова А.", 3: "Ким Д."}

	imageData, err := grid.RenderWeekPNG(grid.WeekImage{
		Anchor:   monday,
		Lessons:  lessons,
		Labels:   labels,
		Now:      time.Now(),
		Location: time.Local,
		Locale:   language.Make(*lang),
		Config:   grid.DefaultConfig(),
	})
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", *output)
	fmt.Printf("📅 Неделя: %s - %s\n", monday.Format("02.01.2006"), monday.AddDate(0, 0, 6).Format("02.01.2006"))
	fmt.Printf("📊 Занятий: %d\n", len(lessons))
}
