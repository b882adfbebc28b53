package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
)

// createClient handles POST /api/clients
func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !s.decode(w, r, &req) {
		return
	}
	client := &model.Client{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Gear:     req.Gear,
	}
	if err := s.directory.CreateClient(r.Context(), client); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// getClient handles GET /api/clients/{id}
func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	client, err := s.directory.GetClient(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// clientPackages handles GET /api/clients/{id}/packages
func (s *Server) clientPackages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	packages, err := s.packages.ListByClient(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePackages(w, packages)
}

// deactivateClient handles DELETE /api/clients/{id}
func (s *Server) deactivateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.directory.DeactivateClient(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listCourses handles GET /api/courses?all=true
func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	courses, err := s.directory.ListCourses(r.Context(), activeOnly)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if courses == nil {
		courses = []*model.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// createCourse handles POST /api/courses
func (s *Server) createCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !s.decode(w, r, &req) {
		return
	}
	course := &model.Course{
		Name:            req.Name,
		Category:        req.Category,
		TotalHours:      req.TotalHours,
		BasePrice:       req.BasePrice,
		DiscountedPrice: req.DiscountedPrice,
	}
	if err := s.directory.CreateCourse(r.Context(), course); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// archiveCourse handles POST /api/courses/{id}/archive
func (s *Server) archiveCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.directory.ArchiveCourse(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listInstructors handles GET /api/staff
func (s *Server) listInstructors(w http.ResponseWriter, r *http.Request) {
	staff, err := s.directory.ListInstructors(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if staff == nil {
		staff = []*model.Staff{}
	}
	writeJSON(w, http.StatusOK, staff)
}

// createStaff handles POST /api/staff
func (s *Server) createStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if !s.decode(w, r, &req) {
		return
	}
	staff := &model.Staff{
		FullName:   req.FullName,
		Role:       req.Role,
		TelegramID: req.TelegramID,
	}
	if err := s.directory.CreateStaff(r.Context(), staff); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

// instructorPackages handles GET /api/staff/{id}/packages
func (s *Server) instructorPackages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	packages, err := s.packages.ListByInstructor(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePackages(w, packages)
}

func writePackages(w http.ResponseWriter, packages []*model.Package) {
	if packages == nil {
		packages = []*model.Package{}
	}
	writeJSON(w, http.StatusOK, packages)
}
