package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	"github.com/noah-isme/manpower-adp-api/internal/service"
	"github.com/noah-isme/manpower-adp-api/pkg/jobs"
)

type summaryEmployeeStub struct {
	eligible []models.Employee
}

func (s summaryEmployeeStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	clone := s.eligible[0]
	return &clone, nil
}

func (s summaryEmployeeStub) ListEligible(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	return s.eligible, nil
}

type summaryTimingStub struct {
	timing models.CycleTiming
}

func (s summaryTimingStub) FindByID(ctx context.Context, id string) (*models.CycleTiming, error) {
	clone := s.timing
	return &clone, nil
}

type summaryWalletStub struct{}

func (s summaryWalletStub) ListEntries(ctx context.Context, employeeID string, from, to time.Time) ([]models.ScanEntry, error) {
	return nil, nil
}

type summaryRepoStub struct{}

func (s summaryRepoStub) FindByID(ctx context.Context, id string) (*models.MonthlyAttendanceSummary, error) {
	return &models.MonthlyAttendanceSummary{ID: id}, nil
}

func (s summaryRepoStub) FindByCycleStart(ctx context.Context, employeeID string, cycleStart time.Time) (*models.MonthlyAttendanceSummary, error) {
	return nil, nil
}

func (s summaryRepoStub) UpsertComputed(ctx context.Context, summary *models.MonthlyAttendanceSummary) (*models.MonthlyAttendanceSummary, error) {
	clone := *summary
	clone.ID = "sum-1"
	return &clone, nil
}

func (s summaryRepoStub) UpdateManualFields(ctx context.Context, id string, patch models.ManualFieldsPatch) (*models.MonthlyAttendanceSummary, error) {
	return &models.MonthlyAttendanceSummary{ID: id}, nil
}

func (s summaryRepoStub) List(ctx context.Context, filter models.SummaryFilter) ([]models.MonthlyAttendanceSummary, int, error) {
	return nil, 0, nil
}

// newMismatchedSummaryService builds a service whose only eligible employee
// sits on a cycle that attributes every window to the following month, so any
// batch run lands on the not-salary-month outcome.
func newMismatchedSummaryService() *service.SummaryService {
	employee := models.Employee{
		ID:            "emp-1",
		CycleTimingID: "timing-1",
		HourlyRate:    100,
		JoinedAt:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Active:        true,
	}
	timing := models.CycleTiming{ID: "timing-1", StartDay: 26, EndDay: 25, Span: models.CycleSpanNextMonth}
	return service.NewSummaryService(
		summaryEmployeeStub{eligible: []models.Employee{employee}},
		summaryTimingStub{timing: timing},
		summaryWalletStub{},
		summaryRepoStub{},
		nil, nil, nil, nil,
	)
}

func TestSummaryHandlerBatchNotSalaryMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(newMismatchedSummaryService(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.BatchComputeRequest{Year: 2025, Month: 3, CycleTimingID: "timing-1"})
	req, _ := http.NewRequest(http.MethodPost, "/payroll/summaries/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Batch(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"not_salary_month":true`)
	assert.Contains(t, w.Body.String(), `"skipped":1`)
}

func TestSummaryHandlerBatchAsync(t *testing.T) {
	gin.SetMode(gin.TestMode)

	processed := make(chan jobs.Job, 1)
	queue := jobs.NewQueue("test-batch", func(ctx context.Context, job jobs.Job) error {
		processed <- job
		return nil
	}, jobs.QueueConfig{Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	handler := NewSummaryHandler(nil, queue)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.BatchComputeRequest{Year: 2025, Month: 3, CycleTimingID: "timing-1"})
	req, _ := http.NewRequest(http.MethodPost, "/payroll/summaries/batch?async=true", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Batch(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"job_id"`)

	select {
	case job := <-processed:
		assert.Equal(t, BatchJobType, job.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("queued batch job was never handled")
	}
}

func TestSummaryHandlerBatchAsyncWithoutQueue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.BatchComputeRequest{Year: 2025, Month: 3, CycleTimingID: "timing-1"})
	req, _ := http.NewRequest(http.MethodPost, "/payroll/summaries/batch?async=true", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Batch(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSummaryHandlerComputeInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(newMismatchedSummaryService(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/payroll/summaries/compute", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Compute(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
