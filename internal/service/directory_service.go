package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"go.uber.org/zap"
)

// DirectoryService - справочники: клиенты, курсы, сотрудники
type DirectoryService struct {
	clients ClientStore
	courses CourseStore
	staff   StaffStore
	logger  *zap.Logger
}

func NewDirectoryService(clients ClientStore, courses CourseStore, staff StaffStore, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		clients: clients,
		courses: courses,
		staff:   staff,
		logger:  logger,
	}
}

// CreateClient регистрирует ученика
func (s *DirectoryService) CreateClient(ctx context.Context, client *model.Client) error {
	client.FullName = strings.TrimSpace(client.FullName)
	if client.FullName == "" {
		return invalid("full_name", "не указано имя")
	}
	if client.Gear == "" {
		client.Gear = model.GearManual
	}
	if !client.Gear.Valid() {
		return invalid("gear", "неизвестный тип коробки передач")
	}
	client.IsActive = true

	if err := s.clients.CreateClient(ctx, client); err != nil {
		return persistence("create client", err)
	}
	s.logger.Info("Client created", zap.Int64("client_id", client.ID))
	return nil
}

// DeactivateClient помечает клиента неактивным. Клиенты не удаляются
func (s *DirectoryService) DeactivateClient(ctx context.Context, clientID int64) error {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return persistence("get client", err)
	}
	if client == nil {
		return notFound("client", clientID)
	}
	if err := s.clients.SetClientActive(ctx, clientID, false); err != nil {
		return persistence("deactivate client", err)
	}
	s.logger.Info("Client deactivated", zap.Int64("client_id", clientID))
	return nil
}

// CreateCourse добавляет курс в каталог
func (s *DirectoryService) CreateCourse(ctx context.Context, course *model.Course) error {
	course.Name = strings.TrimSpace(course.Name)
	switch {
	case course.Name == "":
		return invalid("name", "не указано название")
	case course.TotalHours <= 0:
		return invalid("total_hours", "количество часов должно быть положительным")
	case course.BasePrice < 0:
		return invalid("base_price", "цена не может быть отрицательной")
	case course.DiscountedPrice != nil && (*course.DiscountedPrice < 0 || *course.DiscountedPrice > course.BasePrice):
		return invalid("discounted_price", "цена со скидкой должна быть от 0 до базовой цены")
	}
	course.IsActive = true

	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return persistence("create course", err)
	}
	s.logger.Info("Course created", zap.Int64("course_id", course.ID), zap.String("name", course.Name))
	return nil
}

// ListCourses возвращает каталог
func (s *DirectoryService) ListCourses(ctx context.Context, activeOnly bool) ([]*model.Course, error) {
	courses, err := s.courses.ListCourses(ctx, activeOnly)
	if err != nil {
		return nil, persistence("list courses", err)
	}
	return courses, nil
}

// ArchiveCourse снимает курс с продажи. Пакеты по нему не меняются
func (s *DirectoryService) ArchiveCourse(ctx context.Context, courseID int64) error {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return persistence("get course", err)
	}
	if course == nil {
		return notFound("course", courseID)
	}
	if err := s.courses.SetCourseActive(ctx, courseID, false); err != nil {
		return persistence("archive course", err)
	}
	s.logger.Info("Course archived", zap.Int64("course_id", courseID))
	return nil
}

// CreateStaff добавляет сотрудника
func (s *DirectoryService) CreateStaff(ctx context.Context, staff *model.Staff) error {
	staff.FullName = strings.TrimSpace(staff.FullName)
	if staff.FullName == "" {
		return invalid("full_name", "не указано имя")
	}
	if !staff.Role.Valid() {
		return invalid("role", "неизвестная роль")
	}
	staff.IsActive = true

	if err := s.staff.CreateStaff(ctx, staff); err != nil {
		return persistence("create staff", err)
	}
	s.logger.Info("Staff created", zap.Int64("staff_id", staff.ID), zap.String("role", string(staff.Role)))
	return nil
}

// ListInstructors возвращает инструкторов
func (s *DirectoryService) ListInstructors(ctx context.Context) ([]*model.Staff, error) {
	role := model.RoleInstructor
	staff, err := s.staff.ListStaff(ctx, &role)
	if err != nil {
		return nil, persistence("list staff", err)
	}
	return staff, nil
}

// GetClient возвращает клиента или ErrNotFound
func (s *DirectoryService) GetClient(ctx context.Context, clientID int64) (*model.Client, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, persistence("get client", err)
	}
	if client == nil {
		return nil, notFound("client", clientID)
	}
	return client, nil
}
