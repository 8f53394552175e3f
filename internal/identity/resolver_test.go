package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"

	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Mock Repository for testing
type mockIdentityRepository struct {
	accounts      map[string]*employeeDatamodel.Account
	profiles      []*employeeDatamodel.Profile
	queriedKeys   []string
	returnError   bool
	errorToReturn error
}

func newMockIdentityRepository() *mockIdentityRepository {
	return &mockIdentityRepository{
		accounts: make(map[string]*employeeDatamodel.Account),
	}
}

func (m *mockIdentityRepository) AccountByLogin(_ context.Context, loginName string) (*employeeDatamodel.Account, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if account, ok := m.accounts[loginName]; ok {
		return account, nil
	}
	return nil, ErrNotFound
}

func (m *mockIdentityRepository) ProfilesByFoldedKey(_ context.Context, foldedKeys []string) ([]*employeeDatamodel.Profile, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	m.queriedKeys = foldedKeys
	return m.profiles, nil
}

func strPtr(s string) *string { return &s }

var _ = ginkgo.Describe("Resolver", func() {
	var (
		resolver *Resolver
		mockRepo *mockIdentityRepository
	)

	account := func() *employeeDatamodel.Account {
		return &employeeDatamodel.Account{
			ID:               "emp_001",
			LoginName:        "siti",
			Role:             RoleEmployee,
			IsActive:         true,
			Name:             "Siti (account)",
			Email:            "siti@mail.com",
			Department:       "People Operations",
			Position:         "Staff",
			EmploymentStatus: "permanent",
		}
	}

	ginkgo.BeforeEach(func() {
		mockRepo = newMockIdentityRepository()
		normalizer := NewNormalizer(DefaultSeparators, DefaultPrefixes)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		resolver = NewResolver(mockRepo, normalizer, logger)
	})

	ginkgo.Describe("Resolve", func() {
		ginkgo.Context("when a profile matches under normalized equality", func() {
			ginkgo.BeforeEach(func() {
				mockRepo.accounts["siti"] = account()
				mockRepo.profiles = []*employeeDatamodel.Profile{
					{
						ProfileID:  "EMP001",
						Name:       strPtr("Siti Rahayu"),
						Department: strPtr("Finance"),
					},
				}
			})

			ginkgo.It("should prefer profile fields over account shadow copies", func() {
				ident, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(ident.CanonicalID).To(gomega.Equal("emp_001"))
				gomega.Expect(ident.DisplayName).To(gomega.Equal("Siti Rahayu"))
				gomega.Expect(ident.Department).To(gomega.Equal("Finance"))
			})

			ginkgo.It("should fall back per field when the profile value is null", func() {
				ident, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(ident.Email).To(gomega.Equal("siti@mail.com"))
				gomega.Expect(ident.Position).To(gomega.Equal("Staff"))
				gomega.Expect(ident.EmploymentStatus).To(gomega.Equal("permanent"))
			})

			ginkgo.It("should query the store with the normalized key variants", func() {
				_, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.queriedKeys).To(gomega.Equal([]string{"001", "emp001"}))
			})
		})

		ginkgo.Context("when no profile matches", func() {
			ginkgo.BeforeEach(func() {
				mockRepo.accounts["siti"] = account()
			})

			ginkgo.It("should build the identity entirely from account fields", func() {
				ident, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(ident.DisplayName).To(gomega.Equal("Siti (account)"))
				gomega.Expect(ident.Department).To(gomega.Equal("People Operations"))
			})
		})

		ginkgo.Context("when the store filter returns a false positive", func() {
			ginkgo.BeforeEach(func() {
				mockRepo.accounts["siti"] = account()
				// Returned by a looser store filter, but normalizes to a
				// different key; the resolver must discard it.
				mockRepo.profiles = []*employeeDatamodel.Profile{
					{ProfileID: "EMP-0010", Name: strPtr("Wrong Person")},
				}
			})

			ginkgo.It("should re-validate candidates and fall back", func() {
				ident, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(ident.DisplayName).To(gomega.Equal("Siti (account)"))
			})
		})

		ginkgo.Context("when multiple profiles normalize to the same key", func() {
			ginkgo.BeforeEach(func() {
				mockRepo.accounts["siti"] = account()
				mockRepo.profiles = []*employeeDatamodel.Profile{
					{ProfileID: "EMP001", Name: strPtr("Siti Rahayu")},
					{ProfileID: "emp-001", Name: strPtr("Siti R.")},
				}
			})

			ginkgo.It("should refuse to pick one and return ambiguity", func() {
				ident, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err).To(gomega.MatchError(ErrAmbiguousIdentity))
				gomega.Expect(ident).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the account does not exist", func() {
			ginkgo.It("should return not found", func() {
				ident, err := resolver.Resolve(context.Background(), "nobody")

				gomega.Expect(err).To(gomega.MatchError(ErrNotFound))
				gomega.Expect(ident).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the store fails", func() {
			ginkgo.It("should propagate the failure", func() {
				mockRepo.accounts["siti"] = account()
				storeErr := errors.New("connection refused")
				mockRepo.returnError = true
				mockRepo.errorToReturn = storeErr

				ident, err := resolver.Resolve(context.Background(), "siti")

				gomega.Expect(err).To(gomega.MatchError(storeErr))
				gomega.Expect(ident).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("Merge", func() {
		ginkgo.It("should copy every account field when the profile is nil", func() {
			acc := account()

			ident := Merge(acc, nil)

			gomega.Expect(ident.CanonicalID).To(gomega.Equal(acc.ID))
			gomega.Expect(ident.LoginName).To(gomega.Equal(acc.LoginName))
			gomega.Expect(ident.Role).To(gomega.Equal(acc.Role))
			gomega.Expect(ident.IsActive).To(gomega.BeTrue())
			gomega.Expect(ident.DisplayName).To(gomega.Equal(acc.Name))
		})

		ginkgo.It("should never take role or activity from the profile", func() {
			acc := account()
			profile := &employeeDatamodel.Profile{
				ProfileID: "EMP001",
				Name:      strPtr("Siti Rahayu"),
			}

			ident := Merge(acc, profile)

			gomega.Expect(ident.Role).To(gomega.Equal(RoleEmployee))
			gomega.Expect(ident.IsActive).To(gomega.Equal(acc.IsActive))
		})
	})
})
