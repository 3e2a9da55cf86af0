package apperrors

/*
Предопределенные ошибки. Сравниваются через errors.Is по коду,
так что сервис может вернуть ошибку с собственным сообщением,
а вызывающий код проверит только её вид.
*/

// Виды ошибок, которые различает транспортный слой
var (
	ErrNotFound     = New(CodeNotFound, "resource", "Resource not found")
	ErrForbidden    = New(CodeForbidden, "auth", "Forbidden")
	ErrConflict     = New(CodeConflict, "resource", "Conflict")
	ErrValidation   = New(CodeValidationFailed, "validation", "Validation failed")
	ErrUnauthorized = New(CodeUnauthorized, "auth", "Unauthorized")
)

// ErrInsufficientPermissions - роль не позволяет выполнить операцию.
var ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions")

var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password")

var ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token")

var ErrAccountDisabled = New(CodeForbidden, "auth", "Account is disabled")

var ErrEmailAlreadyExists = New(CodeAlreadyExists, "user", "User with this email or username already exists")

// --- Likes ---

var ErrLikeNotFound = New(CodeNotFound, "like", "Like not found or already inactive")

var ErrLikeForbidden = New(CodeForbidden, "like", "You can only remove your own likes")

var ErrLikesViewForbidden = New(CodeForbidden, "like", "You can only view your own likes")

var ErrInvalidTargetType = New(CodeValidationFailed, "like", "Unsupported like target type")

// --- Jobs ---

var ErrJobNotFound = New(CodeNotFound, "job", "Job offer not found")

var ErrJobCreateForbidden = New(CodeForbidden, "job", "Only recruiters and admins can create job offers")

var ErrJobModifyForbidden = New(CodeForbidden, "job", "You can only modify your own job offers")

var ErrJobApplyForbidden = New(CodeForbidden, "job", "Your role is not allowed to apply to job offers")

var ErrApplicationsViewForbidden = New(CodeForbidden, "job", "You are not authorized to view applications for this job")

var ErrAlreadyApplied = New(CodeConflict, "job", "You have already applied to this job")

var ErrInvalidCVFormat = New(CodeValidationFailed, "job", "Invalid file format").
	WithDetails(map[string]string{"cv_file_id": "CV must be a PDF, DOC or DOCX file"})

// --- Files ---

var ErrFileNotFound = New(CodeNotFound, "file", "File not found")

var ErrFileForbidden = New(CodeForbidden, "file", "You don't have permission to use this file")

var ErrFileTooLarge = New(CodeLimitExceeded, "file", "File size exceeds the allowed limit")

var ErrInvalidFileType = New(CodeUnsupportedType, "file", "The provided file type is not allowed")

// --- Users ---

var ErrUserNotFound = New(CodeNotFound, "user", "User not found")

var ErrInvalidRole = New(CodeValidationFailed, "user", "Invalid role")

// --- Rate limiting ---

var ErrTooManyRequests = New(CodeTooManyRequests, "rate_limit", "Too many requests, slow down")
