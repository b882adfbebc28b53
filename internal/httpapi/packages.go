package httpapi

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
)

// enroll handles POST /api/packages
func (s *Server) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if !s.decode(w, r, &req) {
		return
	}
	pkg, err := s.packages.Enroll(r.Context(), req.ClientID, req.CourseID, req.InstructorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

// getPackage handles GET /api/packages/{id}
func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	pkg, err := s.packages.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// getLedger handles GET /api/packages/{id}/ledger
func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	stats, err := s.ledgers.Recompute(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerResponse{Stats: stats, Warning: ledger.CheckOverage(*stats, 0)})
}

// archivePackage handles POST /api/packages/{id}/archive
func (s *Server) archivePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	pkg, err := s.packages.Archive(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// assignInstructor handles PUT /api/packages/{id}/instructor
func (s *Server) assignInstructor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if !s.decode(w, r, &req) {
		return
	}
	pkg, err := s.packages.AssignInstructor(r.Context(), id, req.InstructorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// logSession handles POST /api/packages/{id}/sessions
func (s *Server) logSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req sessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := service.LogInput{
		PackageID: id,
		Hours:     req.Hours,
		Location:  req.Location,
		Summary:   req.Summary,
	}
	if req.Date != nil {
		in.At = *req.Date
	}

	logger := service.NewSessionLogger(s.store, s.store, s.ledgers, sessionFrom(r.Context()), s.opts, s.logger)
	commit, err := logger.LogSessionAt(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCommitResponse(commit))
}

// listPayments handles GET /api/packages/{id}/payments
func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	payments, err := s.payments.List(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

// recordPayment handles POST /api/packages/{id}/payments
func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := service.PaymentInput{
		PackageID: id,
		Amount:    req.Amount,
		Method:    req.Method,
		Plan:      req.Plan,
		Status:    req.Status,
	}
	if req.PaidAt != nil {
		in.PaidAt = req.PaidAt.In(time.UTC)
	}

	commit, err := s.payments.Record(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPaymentResponse(commit))
}

// setPaymentStatus handles PUT /api/payments/{id}/status
func (s *Server) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req paymentStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	commit, err := s.payments.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaymentResponse(commit))
}
