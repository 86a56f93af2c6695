package utils

import (
	"errors"
	"net/http"

	"github.com/realvia/estate-service/internal/models"
)

/*
   Sentinel errors for estate-service domain logic.
   The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	// Validation failures: static data invariants.
	ErrNonPositivePrice         = errors.New("non_positive_price")
	ErrNonPositiveExpectedPrice = errors.New("non_positive_expected_price")
	ErrOfferBelowFloor          = errors.New("offer_below_floor")
	ErrSellingPriceBelowFloor   = errors.New("selling_price_below_floor")
	ErrSingleOfferAcceptOnly    = errors.New("single_offer_accept_only")
	ErrNegativeValidity         = errors.New("negative_validity")
	ErrInvalidPayload           = errors.New("invalid_payload")

	// Illegal lifecycle transitions.
	ErrWrongState           = errors.New("wrong_state")
	ErrPropertyNotDeletable = errors.New("property_not_deletable")

	// Conflicts.
	ErrOfferAlreadyAccepted = errors.New("offer_already_accepted")
	ErrDuplicateName        = errors.New("duplicate_name")
	ErrRowVersionConflict   = errors.New("row_version_conflict")

	// Referenced id does not exist.
	ErrNotFound = errors.New("not_found")

	ErrNoRowsUpdated = errors.New("no_rows_updated") // Can be used by repos
)

// ErrorKind buckets the sentinel errors so tests and the HTTP boundary
// can classify without enumerating every sentinel.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindState
	KindConflict
	KindNotFound
)

func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNonPositivePrice),
		errors.Is(err, ErrNonPositiveExpectedPrice),
		errors.Is(err, ErrOfferBelowFloor),
		errors.Is(err, ErrSellingPriceBelowFloor),
		errors.Is(err, ErrSingleOfferAcceptOnly),
		errors.Is(err, ErrNegativeValidity),
		errors.Is(err, ErrInvalidPayload):
		return KindValidation
	case errors.Is(err, ErrWrongState),
		errors.Is(err, ErrPropertyNotDeletable):
		return KindState
	case errors.Is(err, ErrOfferAlreadyAccepted),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrRowVersionConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	var conflictErr *RowVersionConflictError
	if errors.As(err, &conflictErr) {
		return KindConflict
	}
	return KindUnknown
}

/*
   RowVersionConflictError is returned when there's a concurrency mismatch
   on the property aggregate. It includes the "latest" Property so the
   controller can return it to the client if desired.
*/
type RowVersionConflictError struct {
	Current *models.Property
}

func (e *RowVersionConflictError) Error() string {
	return "row_version_conflict"
}

func NewRowVersionConflictError(current *models.Property) error {
	return &RowVersionConflictError{Current: current}
}

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
