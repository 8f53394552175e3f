package employee

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestEmployee(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Employee Module Suite")
}

// Mock Repository for testing
type mockEmployeeRepository struct {
	active        map[string]bool
	returnError   bool
	errorToReturn error
}

func (m *mockEmployeeRepository) SetActive(_ context.Context, canonicalID string, activeFlag bool) error {
	if m.returnError {
		return m.errorToReturn
	}
	if _, ok := m.active[canonicalID]; !ok {
		return ErrNotFound
	}
	m.active[canonicalID] = activeFlag
	return nil
}

var _ = ginkgo.Describe("EmployeeService", func() {
	var (
		service    *Service
		mockRepo   *mockEmployeeRepository
		bus        *events.EventBus
		cascaded   []string
		handlerErr error
	)

	ginkgo.BeforeEach(func() {
		mockRepo = &mockEmployeeRepository{active: map[string]bool{"emp_001": true}}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
		cascaded = nil
		handlerErr = nil
		bus.Subscribe(events.EventTypeIdentityDeactivated, func(_ context.Context, event events.Event) error {
			cascaded = append(cascaded, events.CanonicalIDFromEvent(event))
			return handlerErr
		})
		service = NewService(mockRepo, bus, logger)
	})

	ginkgo.Describe("Deactivate", func() {
		ginkgo.It("should mark the account inactive and run the session cascade", func() {
			err := service.Deactivate(context.Background(), "emp_001")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.active["emp_001"]).To(gomega.BeFalse())
			gomega.Expect(cascaded).To(gomega.Equal([]string{"emp_001"}))
		})

		ginkgo.It("should not publish when the account does not exist", func() {
			err := service.Deactivate(context.Background(), "emp_ghost")

			gomega.Expect(err).To(gomega.MatchError(ErrNotFound))
			gomega.Expect(cascaded).To(gomega.BeEmpty())
		})

		ginkgo.It("should surface a cascade failure to the caller", func() {
			handlerErr = errors.New("registry unavailable")

			err := service.Deactivate(context.Background(), "emp_001")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err).To(gomega.MatchError(handlerErr))
		})

		ginkgo.It("should not flip the account when the store fails", func() {
			storeErr := errors.New("connection refused")
			mockRepo.returnError = true
			mockRepo.errorToReturn = storeErr

			err := service.Deactivate(context.Background(), "emp_001")

			gomega.Expect(err).To(gomega.MatchError(storeErr))
			gomega.Expect(cascaded).To(gomega.BeEmpty())
		})
	})
})
