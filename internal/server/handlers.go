package server

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/unipay/unipay/internal/middleware"
	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/service"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	token, role, err := s.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"role":  role.Kind().String(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	token, account, err := s.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":      token,
		"account_id": account.ID,
	})
}

// feeView is the JSON shape of a fee type. Amounts travel as decimal
// strings, never floats.
type feeView struct {
	ID                   string `json:"id"`
	OrganizationID       string `json:"organization_id"`
	Name                 string `json:"name"`
	Amount               string `json:"amount"`
	AcademicYear         string `json:"academic_year"`
	Semester             string `json:"semester"`
	ApplicableYearLevels string `json:"applicable_year_levels"`
	Deadline             int64  `json:"deadline,omitempty"`
}

func toFeeView(fee *models.FeeType) feeView {
	return feeView{
		ID:                   fee.ID,
		OrganizationID:       fee.OrganizationID,
		Name:                 fee.Name,
		Amount:               fee.Amount.StringFixed(2),
		AcademicYear:         fee.AcademicYear,
		Semester:             fee.Semester,
		ApplicableYearLevels: fee.ApplicableYearLevels,
		Deadline:             fee.Deadline,
	}
}

func (s *Server) handleApplicableFees(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if role.Student == nil {
		writeError(w, fmt.Errorf("student profile required: %w", models.ErrNotPermitted))
		return
	}
	fees, err := s.requests.ApplicableFees(r.Context(), role.Student.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]feeView, len(fees))
	for i, fee := range fees {
		views[i] = toFeeView(fee)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fees": views})
}

type requestView struct {
	RequestID     string `json:"request_id"`
	FeeTypeID     string `json:"fee_type_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	QRPayload     string `json:"qr_payload,omitempty"`
	CreatedAt     int64  `json:"created_at"`
	ExpiresAt     int64  `json:"expires_at,omitempty"`
	PaidAt        int64  `json:"paid_at,omitempty"`
}

func toRequestView(req *models.PaymentRequest) requestView {
	view := requestView{
		RequestID:     req.RequestID,
		FeeTypeID:     req.FeeTypeID,
		Amount:        req.Amount.StringFixed(2),
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		CreatedAt:     req.CreatedAt,
		ExpiresAt:     req.ExpiresAt,
		PaidAt:        req.PaidAt,
	}
	// The QR token is only meaningful while the request can still be
	// redeemed.
	if req.Status == models.RequestPending {
		view.QRPayload = req.QRPayload()
	}
	return view
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if role.Student == nil {
		writeError(w, fmt.Errorf("student profile required: %w", models.ErrNotPermitted))
		return
	}
	var req struct {
		FeeTypeID     string `json:"fee_type_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	created, err := s.requests.Create(r.Context(), role.Student.ID, req.FeeTypeID, req.PaymentMethod)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestView(created))
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if role.Student == nil {
		writeError(w, fmt.Errorf("student profile required: %w", models.ErrNotPermitted))
		return
	}
	reqs, err := s.requests.ListByStudent(r.Context(), role.Student.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]requestView, len(reqs))
	for i, req := range reqs {
		views[i] = toRequestView(req)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": views})
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	req, err := s.requests.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Students see only their own requests; officers and admins may
	// look up any.
	if role.Officer == nil && !role.IsAdmin() &&
		(role.Student == nil || role.Student.ID != req.StudentID) {
		writeError(w, models.ErrNotPermitted)
		return
	}
	writeJSON(w, http.StatusOK, toRequestView(req))
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if err := s.requests.Cancel(r.Context(), role, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.RequestCancelled})
}

type paymentView struct {
	PaymentID      string `json:"payment_id"`
	RequestID      string `json:"request_id,omitempty"`
	ORNumber       string `json:"or_number"`
	Amount         string `json:"amount"`
	AmountReceived string `json:"amount_received"`
	ChangeGiven    string `json:"change_given"`
	PaymentMethod  string `json:"payment_method"`
	ReceiptCode    string `json:"receipt_code"`
}

func toPaymentView(payment *models.Payment, receipt *models.Receipt) paymentView {
	return paymentView{
		PaymentID:      payment.ID,
		RequestID:      payment.RequestID,
		ORNumber:       payment.ORNumber,
		Amount:         payment.Amount.StringFixed(2),
		AmountReceived: payment.AmountReceived.StringFixed(2),
		ChangeGiven:    payment.ChangeGiven.StringFixed(2),
		PaymentMethod:  payment.PaymentMethod,
		ReceiptCode:    receipt.VerificationSignature,
	}
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var req struct {
		RequestID      string `json:"request_id"`
		Signature      string `json:"signature"`
		AmountReceived string `json:"amount_received"`
		PaymentMethod  string `json:"payment_method"`
		Notes          string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	amount, err := decimal.NewFromString(req.AmountReceived)
	if err != nil {
		writeError(w, fmt.Errorf("invalid amount %q: %w", req.AmountReceived, models.ErrInsufficientAmount))
		return
	}
	payment, receipt, err := s.requests.Redeem(r.Context(), role,
		req.RequestID, req.Signature, amount, req.PaymentMethod, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(payment, receipt))
}

func (s *Server) handleDirectPayment(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var req struct {
		StudentID      string `json:"student_id"`
		FeeTypeID      string `json:"fee_type_id"`
		AmountReceived string `json:"amount_received"`
		PaymentMethod  string `json:"payment_method"`
		Notes          string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	amount, err := decimal.NewFromString(req.AmountReceived)
	if err != nil {
		writeError(w, fmt.Errorf("invalid amount %q: %w", req.AmountReceived, models.ErrInsufficientAmount))
		return
	}
	payment, receipt, err := s.requests.RecordDirectPayment(r.Context(), role,
		req.StudentID, req.FeeTypeID, amount, req.PaymentMethod, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentView(payment, receipt))
}

func (s *Server) handleVoidPayment(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if err := s.requests.Void(r.Context(), role, r.PathValue("id"), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.PaymentVoid})
}

func (s *Server) handleVerifyReceipt(w http.ResponseWriter, r *http.Request) {
	orNumber := r.URL.Query().Get("or_number")
	sig := r.URL.Query().Get("signature")
	receipt, err := s.requests.VerifyReceipt(r.Context(), orNumber, sig)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":     true,
		"or_number": receipt.ORNumber,
		"issued_at": receipt.CreatedAt,
	})
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var req struct {
		StudentID      string `json:"student_id"`
		OrganizationID string `json:"organization_id"`
		EmployeeID     string `json:"employee_id"`
		Role           string `json:"role"`
		Capabilities   struct {
			ProcessPayments bool `json:"process_payments"`
			VoidPayments    bool `json:"void_payments"`
			GenerateReports bool `json:"generate_reports"`
			PromoteOfficers bool `json:"promote_officers"`
			SuperOfficer    bool `json:"super_officer"`
		} `json:"capabilities"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	officer, err := s.promotions.Promote(r.Context(), role, service.PromoteParams{
		StudentID:      req.StudentID,
		OrganizationID: req.OrganizationID,
		EmployeeID:     req.EmployeeID,
		Role:           req.Role,
		Flags: models.CapabilityFlags{
			CanProcessPayments: req.Capabilities.ProcessPayments,
			CanVoidPayments:    req.Capabilities.VoidPayments,
			CanGenerateReports: req.Capabilities.GenerateReports,
			CanPromoteOfficers: req.Capabilities.PromoteOfficers,
			IsSuperOfficer:     req.Capabilities.SuperOfficer,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"officer_id": officer.ID})
}

func (s *Server) handleDemote(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if err := s.promotions.Demote(r.Context(), role, r.PathValue("id"), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "demoted"})
}

func (s *Server) handleBulkPost(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var req struct {
		OrganizationID       string `json:"organization_id"`
		FeeName              string `json:"fee_name"`
		Amount               string `json:"amount"`
		ApplicableYearLevels string `json:"applicable_year_levels"`
		Notes                string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeBadRequest(w, "invalid amount")
		return
	}
	result, err := s.bulk.Post(r.Context(), role, service.BulkPostParams{
		OrganizationID:       req.OrganizationID,
		FeeName:              req.FeeName,
		Amount:               amount,
		ApplicableYearLevels: req.ApplicableYearLevels,
		Notes:                req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fee_type_id": result.FeeTypeID,
		"fee_created": result.FeeCreated,
		"created":     result.Created,
		"skipped":     result.Skipped,
		"failed":      result.Failed,
	})
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.admin.ListOrganizations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"organizations": orgs})
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var org models.Organization
	if err := decode(r, &org); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if err := s.admin.CreateOrganization(r.Context(), role, &org); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"organization_id": org.ID})
}

func (s *Server) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := s.admin.CurrentPeriod(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, period)
}

func (s *Server) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	var period models.AcademicPeriod
	if err := decode(r, &period); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if err := s.admin.CreatePeriod(r.Context(), role, &period); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"period_id": period.ID})
}

func (s *Server) handleActivatePeriod(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if err := s.admin.SetCurrentPeriod(r.Context(), role, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}
