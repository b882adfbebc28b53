package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
)

// LessonFilter - фильтр выборки занятий. Nil и нулевые поля не ограничивают выборку
type LessonFilter struct {
	InstructorID *int64
	PackageID    *int64
	From         time.Time // включительно
	To           time.Time // не включительно
	Statuses     []model.LessonStatus
}

// PackageFilter - фильтр выборки пакетов
type PackageFilter struct {
	ClientID     *int64
	InstructorID *int64
	Status       *model.PackageStatus
}

// Get-методы всех хранилищ возвращают nil, nil если строки нет.

type LessonStore interface {
	ListLessons(ctx context.Context, filter LessonFilter) ([]*model.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*model.Lesson, error)
	CreateLesson(ctx context.Context, lesson *model.Lesson) error
	UpdateLesson(ctx context.Context, lesson *model.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
	// CompletePastLessons переводит в completed запланированные занятия,
	// закончившиеся до before. Возвращает количество обновлённых строк
	CompletePastLessons(ctx context.Context, before time.Time) (int64, error)
}

type PackageStore interface {
	GetPackage(ctx context.Context, id int64) (*model.Package, error)
	ListPackages(ctx context.Context, filter PackageFilter) ([]*model.Package, error)
	CreatePackage(ctx context.Context, pkg *model.Package) error
	UpdatePackage(ctx context.Context, pkg *model.Package) error
}

type PaymentStore interface {
	ListPayments(ctx context.Context, packageID int64) ([]*model.Payment, error)
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	CreatePayment(ctx context.Context, payment *model.Payment) error
	UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error
}

type ClientStore interface {
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	CreateClient(ctx context.Context, client *model.Client) error
	SetClientActive(ctx context.Context, id int64, active bool) error
}

type CourseStore interface {
	GetCourse(ctx context.Context, id int64) (*model.Course, error)
	ListCourses(ctx context.Context, activeOnly bool) ([]*model.Course, error)
	CreateCourse(ctx context.Context, course *model.Course) error
	SetCourseActive(ctx context.Context, id int64, active bool) error
}

type StaffStore interface {
	GetStaff(ctx context.Context, id int64) (*model.Staff, error)
	GetStaffByTelegramID(ctx context.Context, telegramID int64) (*model.Staff, error)
	ListStaff(ctx context.Context, role *model.Role) ([]*model.Staff, error)
	CreateStaff(ctx context.Context, staff *model.Staff) error
}

// Store - полное хранилище. Реализуется PostgreSQL и SQLite
type Store interface {
	LessonStore
	PackageStore
	PaymentStore
	ClientStore
	CourseStore
	StaffStore
}

// ClientViewer - внешнее досье клиента. Планировщик только передаёт ему ID клиента
type ClientViewer interface {
	ShowClient(ctx context.Context, clientID int64) error
}
