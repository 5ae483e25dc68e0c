package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sgo/internal/config"
	"sgo/internal/database/dbtest"
	"sgo/internal/middleware"
	"sgo/internal/model"
	"sgo/internal/repository"
	"sgo/internal/service"
	"sgo/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: amount is required", service.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: cost center not found", service.ErrUnprocessable), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: expense not found", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: stale version", service.ErrConflict), http.StatusConflict},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		respondError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), tc.err.Error())
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "Internal server error")
}

// api drives the full router against an in-memory database.
type api struct {
	t      *testing.T
	router *gin.Engine
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	tx := repository.NewTransactionManager(db)
	secret := []byte("handler-test-secret")

	companyRepo := repository.NewCompanyRepository(db)
	costCenterRepo := repository.NewCostCenterRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contractRepo := repository.NewContractRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	users := service.NewUserService(repository.NewUserRepository(db), companyRepo, secret)
	costCenters := service.NewCostCenterService(costCenterRepo, auditRepo, tx)

	ctx := context.Background()
	_, err := users.EnsureAdmin(ctx, "admin@oeste.com.br", "senha-admin", "Construtora Oeste")
	require.NoError(t, err)
	_, err = costCenters.SeedCatalog(ctx, []config.CostCenterSeed{{Code: "combustivel", Name: "Combustível"}})
	require.NoError(t, err)

	auth := middleware.NewAuth(secret, false)
	router := NewRouter(RouterOptions{
		Auth:  auth,
		Users: NewUserHandler(users, auth),
		Handlers: []RouteRegistrar{
			NewCostCenterHandler(costCenters),
			NewExpenseHandler(service.NewExpenseService(expenseRepo, costCenterRepo, projectRepo, contractRepo, auditRepo, tx, nil, nil)),
			NewReportHandler(service.NewReportService(expenseRepo, nil)),
			NewProjectHandler(
				service.NewProjectService(projectRepo, auditRepo, tx),
				service.NewTeamService(repository.NewAllocationRepository(db), projectRepo, employeeRepo, auditRepo, tx),
			),
			NewAuditHandler(service.NewAuditService(auditRepo)),
			NewAttachmentHandler(service.NewAttachmentService(storage.NewLocal(t.TempDir()))),
		},
	})
	return &api{t: t, router: router}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) decode(w *httptest.ResponseRecorder, out interface{}) {
	a.t.Helper()
	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(a.t, json.Unmarshal(env.Data, out))
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/login", "", service.LoginUserRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var token service.TokenResponse
	a.decode(w, &token)
	require.NotEmpty(a.t, token.Token)
	return token.Token
}

func TestLoginAndSession(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/login", "", service.LoginUserRequest{Email: "admin@oeste.com.br", Password: "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/login", "", service.LoginUserRequest{Email: "admin@oeste.com.br", Password: "senha-admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/me", "", nil).Code)

	token := a.login("admin@oeste.com.br", "senha-admin")
	w = a.do(http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me service.UserResponse
	a.decode(w, &me)
	assert.Equal(t, model.RoleAdmin, me.Role)
}

func TestRoleGuards(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@oeste.com.br", "senha-admin")

	w := a.do(http.MethodPost, "/api/users", admin, service.CreateUserRequest{
		Username: "mestre", Email: "mestre@oeste.com.br", Password: "senha-obra", Role: model.RoleStaff,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	staff := a.login("mestre@oeste.com.br", "senha-obra")

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users", staff, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/projects", staff, service.ProjectRequest{Name: "X"}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/audit-logs", staff, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/projects", staff, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/costcenters", staff, nil).Code)
}

func TestExpenseFlow(t *testing.T) {
	a := newAPI(t)
	token := a.login("admin@oeste.com.br", "senha-admin")

	var costCenters []service.CostCenterResponse
	a.decode(a.do(http.MethodGet, "/api/costcenters", token, nil), &costCenters)
	require.Len(t, costCenters, 1)
	fuel := costCenters[0]

	w := a.do(http.MethodGet, "/api/costcenters/"+fuel.ID+"/fields", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kmVeiculo")

	w = a.do(http.MethodPost, "/api/projectexpenses", token, map[string]interface{}{
		"cost_center_id": fuel.ID,
		"amount":         "250.00",
		"date":           "2025-03-10",
		"description":    "Diesel caminhão",
		"details":        map[string]string{"kmVeiculo": "45100"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created service.ExpenseResponse
	a.decode(w, &created)
	assert.Equal(t, "250.00", created.Amount)
	assert.Nil(t, created.ProjectID)

	w = a.do(http.MethodPost, "/api/projectexpenses", token, map[string]interface{}{
		"cost_center_id": fuel.ID,
		"amount":         "10",
		"date":           "10/03/2025",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/projectexpenses?head_office_only=true&start_date=2025-03-01&end_date=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []service.ExpenseResponse `json:"items"`
		Total int64                     `json:"total"`
	}
	a.decode(w, &page)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/projectexpenses?head_office_only=talvez", token, nil).Code)

	w = a.do(http.MethodPut, "/api/projectexpenses/"+created.ID, token, map[string]interface{}{
		"amount":  "260.00",
		"version": created.Version,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = a.do(http.MethodPut, "/api/projectexpenses/"+created.ID, token, map[string]interface{}{
		"amount":  "270.00",
		"version": created.Version,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/api/reports/expenses?start_date=2025-03-01&end_date=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report service.ExpenseReportResponse
	a.decode(w, &report)
	assert.Equal(t, "260.00", report.Summary.TotalExpenses)

	w = a.do(http.MethodGet, "/api/reports/expenses/export?start_date=2025-03-01&end_date=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "relatorio-despesas-2025-03-01-a-2025-03-31.xlsx")

	w = a.do(http.MethodGet, "/api/reports/expenses/export/pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/projectexpenses/"+created.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/projectexpenses/"+created.ID, token, nil).Code)
}

func TestAttachmentRoutes(t *testing.T) {
	a := newAPI(t)
	token := a.login("admin@oeste.com.br", "senha-admin")
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "nota.pdf")
	require.NoError(t, err)
	_, err = part.Write(pdf)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/attachments/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var uploaded service.AttachmentResponse
	a.decode(w, &uploaded)
	require.True(t, strings.HasSuffix(uploaded.FilePath, ".pdf"))

	w = a.do(http.MethodGet, "/api/attachments/"+uploaded.FilePath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, pdf, w.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/attachments/ausente.pdf", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/attachments/upload", token, nil).Code)
}
