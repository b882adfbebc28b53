// Package conflict проверяет пересечение занятий одного инструктора.
package conflict

import (
	"sort"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
)

// Candidate - занятие, которое пытаются поставить в расписание
type Candidate struct {
	InstructorID int64
	Start        time.Time
	Duration     time.Duration
	Cancelled    bool
}

// FromLesson строит кандидата из занятия
func FromLesson(l *model.Lesson) Candidate {
	return Candidate{
		InstructorID: l.InstructorID,
		Start:        l.SessionDate,
		Duration:     l.Duration(),
		Cancelled:    l.IsCancelled(),
	}
}

// Overlaps проверяет пересечение полуинтервалов [s1, s1+d1) и [s2, s2+d2).
// Занятия встык не пересекаются.
func Overlaps(s1 time.Time, d1 time.Duration, s2 time.Time, d2 time.Duration) bool {
	return s1.Before(s2.Add(d2)) && s2.Before(s1.Add(d1))
}

// HasConflict проверяет, пересекается ли кандидат с другим неотменённым
// занятием того же инструктора. excludeID исключает редактируемое занятие,
// 0 не исключает ничего.
func HasConflict(candidate Candidate, existing []*model.Lesson, excludeID int64) bool {
	return FindConflict(candidate, existing, excludeID) != nil
}

// FindConflict возвращает самое раннее конфликтующее занятие или nil
func FindConflict(candidate Candidate, existing []*model.Lesson, excludeID int64) *model.Lesson {
	if candidate.Cancelled {
		return nil
	}

	var conflicts []*model.Lesson
	for _, lesson := range existing {
		if lesson == nil || lesson.InstructorID != candidate.InstructorID || lesson.IsCancelled() {
			continue
		}
		if excludeID != 0 && lesson.ID == excludeID {
			continue
		}
		if Overlaps(candidate.Start, candidate.Duration, lesson.SessionDate, lesson.Duration()) {
			conflicts = append(conflicts, lesson)
		}
	}

	if len(conflicts) == 0 {
		return nil
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].SessionDate.Before(conflicts[j].SessionDate)
	})
	return conflicts[0]
}
