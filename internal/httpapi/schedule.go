package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
	"go.uber.org/zap"
)

// getSchedule handles GET /api/schedule?view=&date=&instructor_id=
func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	q := r.URL.Query()

	mode := service.ViewMode(q.Get("view"))
	if mode == "" {
		mode = service.ViewWeek
	}
	anchor, instructor, err := s.scheduleParams(sess, q.Get("date"), q.Get("instructor_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	sched := s.scheduler(sess)
	defer sched.Close()
	if err := sched.Open(r.Context(), mode, anchor, instructor); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	from, to := sched.Range()
	lessons := sched.Lessons()
	if lessons == nil {
		lessons = []*model.Lesson{}
	}
	blocks := sched.Layout()
	if blocks == nil {
		blocks = []grid.Block{}
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		View:         sched.Mode(),
		From:         from,
		To:           to,
		InstructorID: sched.InstructorFilter(),
		Grid:         s.gridConfig(),
		Lessons:      lessons,
		Blocks:       blocks,
	})
}

// getWeekImage handles GET /api/schedule/week.png
func (s *Server) getWeekImage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	q := r.URL.Query()

	anchor, instructor, err := s.scheduleParams(sess, q.Get("date"), q.Get("instructor_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	sched := s.scheduler(sess)
	defer sched.Close()
	if err := sched.Open(r.Context(), service.ViewWeek, anchor, instructor); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	lessons := sched.Lessons()
	packageIDs := make([]int64, 0, len(lessons))
	for _, l := range lessons {
		packageIDs = append(packageIDs, l.PackageID)
	}
	labels, err := s.packages.ClientNames(r.Context(), packageIDs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	from, _ := sched.Range()
	png, err := grid.RenderWeekPNG(grid.WeekImage{
		Anchor:   from,
		Lessons:  lessons,
		Labels:   labels,
		Now:      s.now(),
		Location: s.opts.Location,
		Locale:   sess.Locale,
		Config:   s.gridConfig(),
	})
	if err != nil {
		s.logger.Error("Failed to render week image", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render week image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// scheduleParams разбирает дату и фильтр. Инструктор видит только себя,
// "all" доступен администратору
func (s *Server) scheduleParams(sess service.Session, date, instructor string) (time.Time, *int64, error) {
	var anchor time.Time
	if date != "" {
		parsed, err := timeutil.ParseDate(date, s.opts.Location)
		if err != nil {
			return time.Time{}, nil, &service.ValidationError{Field: "date", Message: "дата в формате ГГГГ-ММ-ДД"}
		}
		anchor = parsed
	}

	switch instructor {
	case "":
		return anchor, sess.DefaultInstructorFilter(), nil
	case "all":
		if !sess.IsAdmin() {
			return time.Time{}, nil, service.ErrForbidden
		}
		return anchor, nil, nil
	}

	id, err := strconv.ParseInt(instructor, 10, 64)
	if err != nil || id <= 0 {
		return time.Time{}, nil, &service.ValidationError{Field: "instructor_id", Message: "неверный инструктор"}
	}
	if !sess.IsAdmin() && id != sess.StaffID {
		return time.Time{}, nil, service.ErrForbidden
	}
	return anchor, &id, nil
}

func (s *Server) gridConfig() grid.Config {
	if s.opts.Grid.Rows() == 0 {
		return grid.DefaultConfig()
	}
	return s.opts.Grid
}
