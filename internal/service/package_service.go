package service

import (
	"context"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"go.uber.org/zap"
)

// PackageService оформляет и сопровождает пакеты часов
type PackageService struct {
	packages PackageStore
	clients  ClientStore
	courses  CourseStore
	staff    StaffStore
	logger   *zap.Logger
}

func NewPackageService(
	packages PackageStore,
	clients ClientStore,
	courses CourseStore,
	staff StaffStore,
	logger *zap.Logger,
) *PackageService {
	return &PackageService{
		packages: packages,
		clients:  clients,
		courses:  courses,
		staff:    staff,
		logger:   logger,
	}
}

// Enroll оформляет пакет по курсу каталога. Цена договора - со скидкой, если она есть
func (s *PackageService) Enroll(ctx context.Context, clientID, courseID int64, instructorID *int64) (*model.Package, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, persistence("get client", err)
	}
	if client == nil {
		return nil, notFound("client", clientID)
	}
	if !client.IsActive {
		return nil, invalid("client_id", "клиент неактивен")
	}

	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, persistence("get course", err)
	}
	if course == nil {
		return nil, notFound("course", courseID)
	}
	if !course.IsActive {
		return nil, invalid("course_id", "курс в архиве")
	}

	if err := s.checkInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	pkg := &model.Package{
		ClientID:      client.ID,
		CourseID:      &course.ID,
		TotalHours:    course.TotalHours,
		ContractPrice: course.EffectivePrice(),
		Status:        model.PackageStatusActive,
		InstructorID:  copyID(instructorID),
	}
	if err := s.packages.CreatePackage(ctx, pkg); err != nil {
		return nil, persistence("create package", err)
	}

	s.logger.Info("Package created",
		zap.Int64("package_id", pkg.ID),
		zap.Int64("client_id", clientID),
		zap.Int64("course_id", courseID),
		zap.Float64("total_hours", pkg.TotalHours),
		zap.Int64("contract_price", pkg.ContractPrice),
	)

	return pkg, nil
}

// Archive завершает обучение по пакету. Пакет не удаляется
func (s *PackageService) Archive(ctx context.Context, packageID int64) (*model.Package, error) {
	pkg, err := s.Get(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.IsArchived() {
		return pkg, nil
	}

	pkg.Status = model.PackageStatusArchived
	if err := s.packages.UpdatePackage(ctx, pkg); err != nil {
		return nil, persistence("archive package", err)
	}

	s.logger.Info("Package archived", zap.Int64("package_id", packageID))
	return pkg, nil
}

// AssignInstructor назначает инструктора; nil снимает назначение
func (s *PackageService) AssignInstructor(ctx context.Context, packageID int64, instructorID *int64) (*model.Package, error) {
	pkg, err := s.Get(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	pkg.InstructorID = copyID(instructorID)
	if err := s.packages.UpdatePackage(ctx, pkg); err != nil {
		return nil, persistence("assign instructor", err)
	}

	s.logger.Info("Package instructor changed", zap.Int64("package_id", packageID), zap.Int64p("instructor_id", instructorID))
	return pkg, nil
}

// Get возвращает пакет или ErrNotFound
func (s *PackageService) Get(ctx context.Context, packageID int64) (*model.Package, error) {
	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		return nil, persistence("get package", err)
	}
	if pkg == nil {
		return nil, notFound("package", packageID)
	}
	return pkg, nil
}

// ListByClient возвращает пакеты клиента
func (s *PackageService) ListByClient(ctx context.Context, clientID int64) ([]*model.Package, error) {
	packages, err := s.packages.ListPackages(ctx, PackageFilter{ClientID: &clientID})
	if err != nil {
		return nil, persistence("list packages", err)
	}
	return packages, nil
}

// ListByInstructor возвращает активные пакеты инструктора
func (s *PackageService) ListByInstructor(ctx context.Context, instructorID int64) ([]*model.Package, error) {
	status := model.PackageStatusActive
	packages, err := s.packages.ListPackages(ctx, PackageFilter{InstructorID: &instructorID, Status: &status})
	if err != nil {
		return nil, persistence("list packages", err)
	}
	return packages, nil
}

func (s *PackageService) checkInstructor(ctx context.Context, instructorID *int64) error {
	if instructorID == nil {
		return nil
	}
	staff, err := s.staff.GetStaff(ctx, *instructorID)
	if err != nil {
		return persistence("get staff", err)
	}
	if staff == nil || staff.Role != model.RoleInstructor || !staff.IsActive {
		return invalid("instructor_id", "инструктор не найден")
	}
	return nil
}

// ClientNames возвращает имя клиента для каждого пакета. Пропавшие пакеты и
// клиенты пропускаются
func (s *PackageService) ClientNames(ctx context.Context, packageIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(packageIDs))
	clients := make(map[int64]string)

	for _, id := range packageIDs {
		if _, done := names[id]; done {
			continue
		}
		pkg, err := s.packages.GetPackage(ctx, id)
		if err != nil {
			return nil, persistence("get package", err)
		}
		if pkg == nil {
			continue
		}

		name, ok := clients[pkg.ClientID]
		if !ok {
			client, err := s.clients.GetClient(ctx, pkg.ClientID)
			if err != nil {
				return nil, persistence("get client", err)
			}
			if client != nil {
				name = client.FullName
			}
			clients[pkg.ClientID] = name
		}
		if name != "" {
			names[id] = name
		}
	}
	return names, nil
}
