package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/formatting"
	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// MaxLessonMinutes - верхняя граница длительности занятия. Используется и как
// окно догрузки при проверке пересечений
const MaxLessonMinutes = 480

// DefaultDurations - допустимые длительности занятия в минутах (1, 1.5, 2, 2.5, 3, 4 ч)
var DefaultDurations = []int{60, 90, 120, 150, 180, 240}

// Session - текущий сотрудник. Передаётся явно, без глобального состояния
type Session struct {
	StaffID int64
	Role    model.Role
	Locale  language.Tag
}

// DefaultInstructorFilter: инструктор видит свои занятия, администратор - все
func (s Session) DefaultInstructorFilter() *int64 {
	if s.Role == model.RoleInstructor {
		id := s.StaffID
		return &id
	}
	return nil
}

func (s Session) IsAdmin() bool {
	return s.Role == model.RoleAdmin
}

// Options - общие параметры планировщика и журнала занятий
type Options struct {
	Location         *time.Location
	Grid             grid.Config
	AllowedDurations []int // минуты; пусто - любая от 1 до MaxLessonMinutes
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Grid.Rows() == 0 {
		o.Grid = grid.DefaultConfig()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

// validateDuration проверяет длительность занятия по политике расписания
func validateDuration(minutes int, allowed []int) error {
	if minutes <= 0 {
		return invalid("duration", "длительность должна быть положительной")
	}
	if minutes > MaxLessonMinutes {
		return invalid("duration", fmt.Sprintf("длительность не больше %d ч", MaxLessonMinutes/60))
	}
	if len(allowed) > 0 && !slices.Contains(allowed, minutes) {
		labels := make([]string, 0, len(allowed))
		for _, m := range allowed {
			labels = append(labels, strconv.FormatFloat(float64(m)/60, 'f', -1, 64))
		}
		return invalid("duration", "допустимая длительность (ч): "+strings.Join(labels, ", "))
	}
	return nil
}

// StaffService определяет текущего сотрудника
type StaffService struct {
	staff  StaffStore
	logger *zap.Logger
}

func NewStaffService(staff StaffStore, logger *zap.Logger) *StaffService {
	return &StaffService{staff: staff, logger: logger}
}

// Identify находит сотрудника по Telegram ID
func (s *StaffService) Identify(ctx context.Context, telegramID int64, locale language.Tag) (Session, error) {
	staff, err := s.staff.GetStaffByTelegramID(ctx, telegramID)
	if err != nil {
		return Session{}, persistence("get staff by telegram id", err)
	}
	return s.session(staff, telegramID, locale)
}

// SessionFor находит сотрудника по ID (для HTTP API за доверенным шлюзом)
func (s *StaffService) SessionFor(ctx context.Context, staffID int64, locale language.Tag) (Session, error) {
	staff, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		return Session{}, persistence("get staff", err)
	}
	return s.session(staff, staffID, locale)
}

func (s *StaffService) session(staff *model.Staff, key int64, locale language.Tag) (Session, error) {
	if staff == nil {
		return Session{}, notFound("staff", key)
	}
	if !staff.IsActive {
		s.logger.Warn("Inactive staff access attempt", zap.Int64("staff_id", staff.ID))
		return Session{}, fmt.Errorf("staff %d inactive: %w", staff.ID, ErrForbidden)
	}
	return Session{
		StaffID: staff.ID,
		Role:    staff.Role,
		Locale:  formatting.Match(locale),
	}, nil
}
