package service

import (
	"context"
	"testing"
	"time"

	"sgo/internal/database/dbtest"
	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	events []ExpenseEvent
}

func (n *recordingNotifier) NotifyExpense(event ExpenseEvent) {
	n.events = append(n.events, event)
}

// env wires every service against one in-memory database.
type env struct {
	db       *gorm.DB
	ctx      context.Context
	actor    Actor
	notifier *recordingNotifier

	costCenterRepo repository.CostCenterRepository
	expenseRepo    repository.ExpenseRepository
	auditRepo      repository.AuditRepository

	costCenters CostCenterService
	expenses    ExpenseService
	reports     ReportService
	projects    ProjectService
	contracts   ContractService
	invoices    InvoiceService
	employees   EmployeeService
	team        *teamService
	users       UserService
	companies   CompanyService
	statistics  *statisticsService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	tx := repository.NewTransactionManager(db)

	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	costCenterRepo := repository.NewCostCenterRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contractRepo := repository.NewContractRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	company := &model.Company{Name: "Construtora Oeste"}
	require.NoError(t, companyRepo.Create(context.Background(), company))

	e := &env{
		db:             db,
		ctx:            context.Background(),
		actor:          Actor{CompanyID: company.ID, Role: model.RoleManager},
		notifier:       &recordingNotifier{},
		costCenterRepo: costCenterRepo,
		expenseRepo:    expenseRepo,
		auditRepo:      auditRepo,
		costCenters:    NewCostCenterService(costCenterRepo, auditRepo, tx),
		reports:        NewReportService(expenseRepo, nil),
		projects:       NewProjectService(projectRepo, auditRepo, tx),
		contracts:      NewContractService(contractRepo, projectRepo, auditRepo, tx),
		invoices:       NewInvoiceService(invoiceRepo, contractRepo, auditRepo, tx),
		employees:      NewEmployeeService(employeeRepo, auditRepo, tx),
		users:          NewUserService(userRepo, companyRepo, []byte("test-secret")),
		companies:      NewCompanyService(companyRepo, auditRepo, tx),
	}
	e.expenses = NewExpenseService(expenseRepo, costCenterRepo, projectRepo, contractRepo, auditRepo, tx, nil, e.notifier)
	e.team = NewTeamService(allocationRepo, projectRepo, employeeRepo, auditRepo, tx).(*teamService)
	e.statistics = NewStatisticsService(repository.NewStatisticsRepository(db)).(*statisticsService)
	return e
}

func (e *env) costCenter(t *testing.T, code, name string) *model.CostCenter {
	t.Helper()
	cc := &model.CostCenter{Code: code, Name: name}
	require.NoError(t, e.costCenterRepo.Create(e.ctx, cc))
	return cc
}

func (e *env) project(t *testing.T, name string) *ProjectResponse {
	t.Helper()
	p, err := e.projects.CreateProject(e.ctx, e.actor, ProjectRequest{Name: name, Status: model.ProjectActive})
	require.NoError(t, err)
	return p
}

func (e *env) contract(t *testing.T, projectID, number string) *ContractResponse {
	t.Helper()
	c, err := e.contracts.CreateContract(e.ctx, e.actor, ContractRequest{ProjectID: projectID, Number: number, Value: money("100000")})
	require.NoError(t, err)
	return c
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strp(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
