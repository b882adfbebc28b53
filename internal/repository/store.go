// Package repository - хранилище PostgreSQL на pgx.
package repository

import (
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store объединяет репозитории в service.Store
type Store struct {
	*LessonRepository
	*PackageRepository
	*PaymentRepository
	*ClientRepository
	*CourseRepository
	*StaffRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		LessonRepository:  NewLessonRepository(pool),
		PackageRepository: NewPackageRepository(pool),
		PaymentRepository: NewPaymentRepository(pool),
		ClientRepository:  NewClientRepository(pool),
		CourseRepository:  NewCourseRepository(pool),
		StaffRepository:   NewStaffRepository(pool),
	}
}

var _ service.Store = (*Store)(nil)
