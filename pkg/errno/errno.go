package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithDetail keeps the code and appends detail to the message.
func (e Errno) WithDetail(detail string) Errno {
	if detail == "" {
		return e
	}
	return Errno{Code: e.Code, Message: e.Message + ": " + detail}
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Message
	}
	var typedPtr *Errno
	if errors.As(err, &typedPtr) && typedPtr != nil {
		return typedPtr.Code, typedPtr.Message
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrValidation       = Errno{Code: 10003, Message: "Validation failed"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Transaction Errors (30000+)
var (
	ErrRecipeInvalid       = Errno{Code: 30101, Message: "Recipe invalid"}
	ErrWorkspaceNotFound   = Errno{Code: 30102, Message: "Workspace not found"}
	ErrBuildFailed         = Errno{Code: 30103, Message: "Transaction build failed"}
	ErrTransactionNotFound = Errno{Code: 30201, Message: "Transaction not found"}
	ErrStatusInvalid       = Errno{Code: 30202, Message: "Transaction status invalid"}
)
