package services

import (
	"context"
	"sync"

	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/internal/repository"
)

// In-memory repository fakes. Find methods return copies so a service
// mutation only sticks after an explicit Update, mirroring how a row
// read inside a transaction behaves.

type fakeContractRepo struct {
	mu        sync.Mutex
	contracts map[string]models.Contract
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[string]models.Contract)}
}

func (f *fakeContractRepo) put(c models.Contract) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contracts[c.ID] = c
}

func (f *fakeContractRepo) get(id string) models.Contract {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contracts[id]
}

func (f *fakeContractRepo) FindByID(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[id]
	if !ok || c.TenantID != tenantID || c.BranchID != branchID {
		return nil, repository.ErrRecordNotFound
	}
	copied := c
	return &copied, nil
}

func (f *fakeContractRepo) FindByIDForUpdate(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	return f.FindByID(ctx, tenantID, branchID, id)
}

func (f *fakeContractRepo) FindByIDWithSuspensions(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	return f.FindByID(ctx, tenantID, branchID, id)
}

func (f *fakeContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	f.put(*contract)
	return nil
}

func (f *fakeContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	f.put(*contract)
	return nil
}

func (f *fakeContractRepo) FindDueScheduledCancellations(ctx context.Context, today string) ([]models.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []models.Contract
	for _, c := range f.contracts {
		if c.Status == models.ContractStatusScheduledCancellation && c.CancelDate != nil && *c.CancelDate <= today {
			due = append(due, c)
		}
	}
	return due, nil
}

type fakeSuspensionRepo struct {
	mu          sync.Mutex
	suspensions map[string]models.Suspension
}

func newFakeSuspensionRepo() *fakeSuspensionRepo {
	return &fakeSuspensionRepo{suspensions: make(map[string]models.Suspension)}
}

func (f *fakeSuspensionRepo) put(s models.Suspension) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspensions[s.ID] = s
}

func (f *fakeSuspensionRepo) get(id string) models.Suspension {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspensions[id]
}

func (f *fakeSuspensionRepo) FindByID(ctx context.Context, contractID, id string) (*models.Suspension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.suspensions[id]
	if !ok || s.ContractID != contractID {
		return nil, repository.ErrRecordNotFound
	}
	copied := s
	return &copied, nil
}

func (f *fakeSuspensionRepo) FindByIDForUpdate(ctx context.Context, contractID, id string) (*models.Suspension, error) {
	return f.FindByID(ctx, contractID, id)
}

func (f *fakeSuspensionRepo) FindByContract(ctx context.Context, contractID string) ([]models.Suspension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Suspension
	for _, s := range f.suspensions {
		if s.ContractID == contractID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSuspensionRepo) Create(ctx context.Context, suspension *models.Suspension) error {
	f.put(*suspension)
	return nil
}

func (f *fakeSuspensionRepo) Update(ctx context.Context, suspension *models.Suspension) error {
	f.put(*suspension)
	return nil
}

func (f *fakeSuspensionRepo) FindDueScheduled(ctx context.Context, today string) ([]models.Suspension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []models.Suspension
	for _, s := range f.suspensions {
		if s.Status == models.SuspensionStatusScheduled && s.StartDate <= today {
			due = append(due, s)
		}
	}
	return due, nil
}

func (f *fakeSuspensionRepo) FindEndedActive(ctx context.Context, today string) ([]models.Suspension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ended []models.Suspension
	for _, s := range f.suspensions {
		if s.Status == models.SuspensionStatusActive && s.EndDate <= today {
			ended = append(ended, s)
		}
	}
	return ended, nil
}

func (f *fakeSuspensionRepo) HasOtherOpenHolds(ctx context.Context, contractID, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.suspensions {
		if s.ContractID != contractID || s.ID == excludeID {
			continue
		}
		if s.Status == models.SuspensionStatusScheduled || s.Status == models.SuspensionStatusActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeSummaryRepo struct {
	mu     sync.Mutex
	deltas map[string]models.SummaryDelta // keyed by tenant|branch|date
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{deltas: make(map[string]models.SummaryDelta)}
}

func (f *fakeSummaryRepo) ApplyDelta(ctx context.Context, tenantID, branchID, date string, delta models.SummaryDelta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := tenantID + "|" + branchID + "|" + date
	d := f.deltas[key]
	d.Active += delta.Active
	d.Suspended += delta.Suspended
	d.New += delta.New
	d.Canceled += delta.Canceled
	d.Churn += delta.Churn
	d.ScheduledCancellation += delta.ScheduledCancellation
	d.Refunds += delta.Refunds
	f.deltas[key] = d
	return nil
}

func (f *fakeSummaryRepo) total(tenantID, branchID, date string) models.SummaryDelta {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deltas[tenantID+"|"+branchID+"|"+date]
}

func (f *fakeSummaryRepo) ListDaily(ctx context.Context, tenantID, branchID, from, to string) ([]models.DailySummary, error) {
	return nil, nil
}

func (f *fakeSummaryRepo) ListMonthly(ctx context.Context, tenantID, branchID, year string) ([]models.MonthlySummary, error) {
	return nil, nil
}

type fakeBranchRepo struct {
	mu       sync.Mutex
	settings map[string]models.BranchSettings
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{settings: make(map[string]models.BranchSettings)}
}

func (f *fakeBranchRepo) GetSettings(ctx context.Context, tenantID, branchID string) (*models.BranchSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[tenantID+"|"+branchID]; ok {
		copied := s
		return &copied, nil
	}
	return &models.BranchSettings{TenantID: tenantID, BranchID: branchID, Timezone: "UTC"}, nil
}

func (f *fakeBranchRepo) SaveSettings(ctx context.Context, settings *models.BranchSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[settings.TenantID+"|"+settings.BranchID] = *settings
	return nil
}

// fakeTxManager runs the unit of work directly against the shared fakes.
type fakeTxManager struct {
	repos *repository.Repositories
}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(r *repository.Repositories) error) error {
	return fn(m.repos)
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) Log(ctx context.Context, tenantID, branchID, actorID, action, entity, entityID, details, metadata string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

type fakeEnrollmentCleaner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEnrollmentCleaner) CleanupEnrollments(ctx context.Context, tenantID, branchID, clientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 2, f.err
}

func (f *fakeEnrollmentCleaner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDebtCleaner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeDebtCleaner) CleanupOpenDebts(ctx context.Context, tenantID, branchID, saleID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 1, nil
}

func (f *fakeDebtCleaner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testEnv wires the fakes into the service constructors
type testEnv struct {
	contracts   *fakeContractRepo
	suspensions *fakeSuspensionRepo
	summaries   *fakeSummaryRepo
	branches    *fakeBranchRepo
	repos       *repository.Repositories
	txm         *fakeTxManager
	summarySvc  *SummaryService
	audit       *fakeAudit
}

func newTestEnv() *testEnv {
	contracts := newFakeContractRepo()
	suspensions := newFakeSuspensionRepo()
	summaries := newFakeSummaryRepo()
	branches := newFakeBranchRepo()

	repos := &repository.Repositories{
		Contract:   contracts,
		Suspension: suspensions,
		Summary:    summaries,
		Branch:     branches,
	}

	return &testEnv{
		contracts:   contracts,
		suspensions: suspensions,
		summaries:   summaries,
		branches:    branches,
		repos:       repos,
		txm:         &fakeTxManager{repos: repos},
		summarySvc:  NewSummaryService(summaries),
		audit:       &fakeAudit{},
	}
}
