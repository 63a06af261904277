package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

var (
	// ErrAccountNotFound indicates the requested account does not exist.
	ErrAccountNotFound = apperrors.New("ACCOUNT_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrAdminEmailNotFound is returned by the admin login and reset flows.
	ErrAdminEmailNotFound = apperrors.New("ADMIN_NOT_FOUND", "Admin email not found", http.StatusNotFound)
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrRoleImmutable guards the seeded Super Admin role.
	ErrRoleImmutable = apperrors.New("ROLE_IMMUTABLE", "Super Admin role cannot be renamed or deleted", http.StatusBadRequest)
	// ErrAdvertisementNotFound indicates the requested advertisement does not exist.
	ErrAdvertisementNotFound = apperrors.New("ADVERTISEMENT_NOT_FOUND", "Advertisement not found", http.StatusNotFound)
	// ErrUseAdminPortal is returned when an admin account hits a consumer flow.
	ErrUseAdminPortal = apperrors.New("USE_ADMIN_PORTAL", "Please access the admin portal for this account.", http.StatusConflict)
	// ErrEmailRegistered is returned when a verified consumer registers again.
	ErrEmailRegistered = apperrors.New("EMAIL_REGISTERED", "Email is already registered.", http.StatusConflict)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate")
}
