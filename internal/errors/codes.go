package errors

// Error codes returned in the "code" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // missing bearer token
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED" // logged out
	AuthUserNotFound       = "AUTH_USER_NOT_FOUND"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthPasswordMismatch   = "AUTH_PASSWORD_MISMATCH" // current password incorrect

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationTooShort      = "VALIDATION_TOO_SHORT"
	ValidationTooLong       = "VALIDATION_TOO_LONG"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationWeakPassword  = "VALIDATION_WEAK_PASSWORD"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	RouteNotFound         = "ROUTE_NOT_FOUND"

	// ==================== Store (STORE_) ====================
	StoreNotFound      = "STORE_NOT_FOUND"
	StoreEmailExists   = "STORE_EMAIL_EXISTS"
	StoreOwnerNotFound = "STORE_OWNER_NOT_FOUND"
	StoreOwnerInvalid  = "STORE_OWNER_INVALID" // owner is not a store_owner
	StoreAlreadyOwned  = "STORE_ALREADY_OWNED" // owner already has a store

	// ==================== Rating (RATING_) ====================
	RatingNotFound      = "RATING_NOT_FOUND"
	RatingInvalidRating = "RATING_INVALID_VALUE"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
