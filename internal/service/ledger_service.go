package service

import (
	"context"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LedgerService загружает исходные строки пакета и строит его проекцию.
// Ничего не кэширует: каждый вызов читает актуальные занятия и оплаты
type LedgerService struct {
	packages PackageStore
	lessons  LessonStore
	payments PaymentStore
	logger   *zap.Logger
}

func NewLedgerService(packages PackageStore, lessons LessonStore, payments PaymentStore, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		packages: packages,
		lessons:  lessons,
		payments: payments,
		logger:   logger,
	}
}

// Recompute пересчитывает баланс пакета. Сбой загрузки возвращается как
// *ledger.FetchError, а не как нулевые значения
func (s *LedgerService) Recompute(ctx context.Context, packageID int64) (*ledger.Stats, error) {
	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		return nil, &ledger.FetchError{PackageID: packageID, Source: "package", Err: err}
	}
	if pkg == nil {
		return nil, notFound("package", packageID)
	}

	g, gctx := errgroup.WithContext(ctx)

	var lessons []*model.Lesson
	g.Go(func() error {
		var err error
		lessons, err = s.lessons.ListLessons(gctx, LessonFilter{PackageID: &packageID})
		if err != nil {
			return &ledger.FetchError{PackageID: packageID, Source: "lessons", Err: err}
		}
		return nil
	})

	var payments []*model.Payment
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListPayments(gctx, packageID)
		if err != nil {
			return &ledger.FetchError{PackageID: packageID, Source: "payments", Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load ledger rows", zap.Int64("package_id", packageID), zap.Error(err))
		return nil, err
	}

	stats := ledger.Compute(pkg, lessons, payments)

	s.logger.Debug("Ledger recomputed",
		zap.Int64("package_id", packageID),
		zap.Float64("remaining_hours", stats.RemainingHours),
		zap.Int64("balance_due", stats.BalanceDue),
	)

	return &stats, nil
}
