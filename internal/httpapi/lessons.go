package httpapi

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/autoschool_bot/internal/service"
)

// createLesson handles POST /api/lessons
func (s *Server) createLesson(w http.ResponseWriter, r *http.Request) {
	var req lessonRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.saveLesson(w, r, req, 0, http.StatusCreated)
}

// updateLesson handles PUT /api/lessons/{id}
func (s *Server) updateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req lessonRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.authorizeLesson(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.saveLesson(w, r, req, id, http.StatusOK)
}

func (s *Server) saveLesson(w http.ResponseWriter, r *http.Request, req lessonRequest, id int64, status int) {
	sess := sessionFrom(r.Context())
	if req.InstructorID == 0 && !sess.IsAdmin() {
		req.InstructorID = sess.StaffID
	}
	if !sess.IsAdmin() && req.InstructorID != sess.StaffID {
		s.writeServiceError(w, r, service.ErrForbidden)
		return
	}

	sched := s.scheduler(sess)
	defer sched.Close()

	commit, err := sched.CreateOrUpdate(r.Context(), req.lesson(id))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, newCommitResponse(commit))
}

// removeLesson handles DELETE /api/lessons/{id}
func (s *Server) removeLesson(w http.ResponseWriter, r *http.Request) {
	s.lessonAction(w, r, (*service.Scheduler).Remove)
}

// cancelLesson handles POST /api/lessons/{id}/cancel
func (s *Server) cancelLesson(w http.ResponseWriter, r *http.Request) {
	s.lessonAction(w, r, (*service.Scheduler).Cancel)
}

// completeLesson handles POST /api/lessons/{id}/complete
func (s *Server) completeLesson(w http.ResponseWriter, r *http.Request) {
	s.lessonAction(w, r, (*service.Scheduler).MarkCompleted)
}

type lessonActionFunc func(*service.Scheduler, context.Context, int64) (*service.Commit, error)

func (s *Server) lessonAction(w http.ResponseWriter, r *http.Request, action lessonActionFunc) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.authorizeLesson(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	sched := s.scheduler(sessionFrom(r.Context()))
	defer sched.Close()

	commit, err := action(sched, r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommitResponse(commit))
}

// lessonClient handles GET /api/lessons/{id}/client
func (s *Server) lessonClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sched := s.scheduler(sessionFrom(r.Context()))
	defer sched.Close()

	clientID, err := sched.InspectClient(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	client, err := s.directory.GetClient(r.Context(), clientID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// authorizeLesson: инструктор меняет только свои занятия
func (s *Server) authorizeLesson(ctx context.Context, lessonID int64) error {
	sess := sessionFrom(ctx)
	if sess.IsAdmin() {
		return nil
	}
	lesson, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return &service.PersistenceError{Op: "get lesson", Err: err}
	}
	if lesson == nil {
		// отсутствие занятия сообщит сам планировщик
		return nil
	}
	if lesson.InstructorID != sess.StaffID {
		return service.ErrForbidden
	}
	return nil
}
