// Package employees is the only code path that reads or writes employee
// records. Every operation takes the caller's identity and refuses to touch
// rows owned by another organization.
package employees

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/validation"
	"github.com/hugh/go-roster/pkg/apperr"
	"github.com/hugh/go-roster/pkg/phone"
	"gorm.io/gorm"
)

// DateLayout is the wire format of joining_date.
const DateLayout = "2006-01-02"

const (
	msgNotFound       = "Employee not found."
	msgForbidden      = "You do not have access to this employee."
	msgEmailConflict  = "An employee with this email already exists."
	msgPhoneConflict  = "An employee with this phone number already exists."
	msgUniqueConflict = "An employee with this email or phone number already exists."
)

// Sealer encrypts column values at rest. A nil Sealer stores plaintext.
type Sealer interface {
	SealString(plaintext string) (string, error)
	OpenString(stored string) (string, error)
}

type Service struct {
	db        *gorm.DB
	sealer    Sealer
	phones    *phone.Normalizer
	validator *validation.Validator
	logger    *slog.Logger
}

func NewService(db *gorm.DB, sealer Sealer, phones *phone.Normalizer, v *validation.Validator, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		sealer:    sealer,
		phones:    phones,
		validator: v,
		logger:    logger,
	}
}

// CreateInput is the employee form. It has no organization field: the
// organization always comes from the identity.
type CreateInput struct {
	Name        string `form:"name" validate:"required,max=100"`
	Email       string `form:"email" validate:"required,max=100,email"`
	Phone       string `form:"phone" validate:"required,max=15"`
	Address     string `form:"address" validate:"required,max=255"`
	JoiningDate string `form:"joining_date" validate:"required,datetime=2006-01-02"`
	Designation string `form:"designation" validate:"required,max=100"`
}

func (in *CreateInput) normalize() {
	in.Name = validation.SanitizeString(in.Name)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Phone = validation.SanitizeString(in.Phone)
	in.Address = validation.SanitizeString(in.Address)
	in.JoiningDate = validation.SanitizeString(in.JoiningDate)
	in.Designation = validation.SanitizeString(in.Designation)
}

// UpdateInput names the mutable fields. Nil fields are left unchanged.
// Joining date and organization cannot be changed.
type UpdateInput struct {
	Name        *string
	Email       *string
	Phone       *string
	Address     *string
	Designation *string
}

func (s *Service) List(ctx context.Context, identity *auth.Identity) ([]models.Employee, error) {
	if identity == nil {
		return nil, apperr.Unauthorized("Please log in to continue.")
	}

	var employees []models.Employee
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", identity.OrganizationID).
		Order("name ASC").
		Find(&employees).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("listing employees: %w", err))
	}

	for i := range employees {
		if err := s.open(&employees[i]); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	return employees, nil
}

func (s *Service) Count(ctx context.Context, identity *auth.Identity) (int64, error) {
	if identity == nil {
		return 0, apperr.Unauthorized("Please log in to continue.")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("organization_id = ?", identity.OrganizationID).
		Count(&count).Error; err != nil {
		return 0, apperr.Internal(fmt.Errorf("counting employees: %w", err))
	}
	return count, nil
}

func (s *Service) Create(ctx context.Context, identity *auth.Identity, input CreateInput) (*models.Employee, error) {
	if identity == nil {
		return nil, apperr.Unauthorized("Please log in to continue.")
	}

	input.normalize()
	joining, err := s.check(ctx, &input, uuid.Nil)
	if err != nil {
		return nil, err
	}

	address, err := s.seal(input.Address)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	emp := models.Employee{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        address,
		JoiningDate:    joining,
		Designation:    input.Designation,
		OrganizationID: identity.OrganizationID,
	}
	if err := s.db.WithContext(ctx).Create(&emp).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindConflict, msgUniqueConflict, err)
		}
		return nil, apperr.Internal(fmt.Errorf("creating employee: %w", err))
	}
	emp.Address = input.Address

	s.logger.Info("created employee",
		"id", emp.ID,
		"organization_id", emp.OrganizationID,
		"user_id", identity.UserID,
	)

	return &emp, nil
}

// Get returns the employee with id. A missing id is NotFound, another
// organization's employee is Forbidden.
func (s *Service) Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*models.Employee, error) {
	if identity == nil {
		return nil, apperr.Unauthorized("Please log in to continue.")
	}

	var emp models.Employee
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&emp).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("loading employee: %w", err))
	}

	if emp.OrganizationID != identity.OrganizationID {
		s.logger.Warn("cross-organization employee access denied",
			"id", id,
			"user_id", identity.UserID,
			"organization_id", identity.OrganizationID,
		)
		return nil, apperr.Forbidden(msgForbidden)
	}

	if err := s.open(&emp); err != nil {
		return nil, apperr.Internal(err)
	}
	return &emp, nil
}

func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, patch UpdateInput) (*models.Employee, error) {
	emp, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	merged := CreateInput{
		Name:        emp.Name,
		Email:       emp.Email,
		Phone:       emp.Phone,
		Address:     emp.Address,
		JoiningDate: emp.JoiningDate.Format(DateLayout),
		Designation: emp.Designation,
	}
	apply(&merged.Name, patch.Name)
	apply(&merged.Email, patch.Email)
	apply(&merged.Phone, patch.Phone)
	apply(&merged.Address, patch.Address)
	apply(&merged.Designation, patch.Designation)
	merged.normalize()

	if _, err := s.check(ctx, &merged, emp.ID); err != nil {
		return nil, err
	}

	address, err := s.seal(merged.Address)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	res := s.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ? AND organization_id = ?", emp.ID, identity.OrganizationID).
		Updates(map[string]interface{}{
			"name":        merged.Name,
			"email":       merged.Email,
			"phone":       merged.Phone,
			"address":     address,
			"designation": merged.Designation,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return nil, apperr.Wrap(apperr.KindConflict, msgUniqueConflict, res.Error)
		}
		return nil, apperr.Internal(fmt.Errorf("updating employee: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(msgNotFound)
	}

	s.logger.Info("updated employee", "id", emp.ID, "user_id", identity.UserID)

	return s.Get(ctx, identity, emp.ID)
}

func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	emp, err := s.Get(ctx, identity, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", emp.ID, identity.OrganizationID).
		Delete(&models.Employee{})
	if res.Error != nil {
		return apperr.Internal(fmt.Errorf("deleting employee: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgNotFound)
	}

	s.logger.Info("deleted employee", "id", emp.ID, "user_id", identity.UserID)
	return nil
}

// check validates input in place, canonicalizes the phone number and rejects
// email or phone values held by another employee. It returns the parsed
// joining date.
func (s *Service) check(ctx context.Context, input *CreateInput, self uuid.UUID) (time.Time, error) {
	if fields := s.validator.Struct(input); len(fields) > 0 {
		return time.Time{}, apperr.Validation(fields)
	}

	// Numbers that do not parse for the region are kept as entered.
	input.Phone = s.phones.Canonical(input.Phone)

	joining, err := time.Parse(DateLayout, input.JoiningDate)
	if err != nil {
		return time.Time{}, apperr.FieldError("joining_date", "Joining date must be a date in the form YYYY-MM-DD.")
	}

	taken, err := s.taken(ctx, "email", input.Email, self)
	if err != nil {
		return time.Time{}, err
	}
	if taken {
		return time.Time{}, apperr.Conflict(msgEmailConflict)
	}

	taken, err = s.taken(ctx, "phone", input.Phone, self)
	if err != nil {
		return time.Time{}, err
	}
	if taken {
		return time.Time{}, apperr.Conflict(msgPhoneConflict)
	}

	return joining, nil
}

// taken reports whether any employee other than self holds value in column.
// Uniqueness is global, not per organization, matching the unique indexes.
func (s *Service) taken(ctx context.Context, column, value string, self uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Employee{}).Where(column+" = ?", value)
	if self != uuid.Nil {
		q = q.Where("id <> ?", self)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperr.Internal(fmt.Errorf("checking %s: %w", column, err))
	}
	return count > 0, nil
}

func (s *Service) seal(address string) (string, error) {
	if s.sealer == nil || address == "" {
		return address, nil
	}
	sealed, err := s.sealer.SealString(address)
	if err != nil {
		return "", fmt.Errorf("sealing address: %w", err)
	}
	return sealed, nil
}

func (s *Service) open(emp *models.Employee) error {
	if s.sealer == nil {
		return nil
	}
	address, err := s.sealer.OpenString(emp.Address)
	if err != nil {
		return fmt.Errorf("opening address of employee %s: %w", emp.ID, err)
	}
	emp.Address = address
	return nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
