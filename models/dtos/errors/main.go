package errors

import (
	"time"

	"vapor/api/models/dtos"
	apperrors "vapor/api/models/errors"
)

/*
	Utility functions to facillitate returning error responses to HTTP clients
*/

// -- Simplest: 1 error with message
func CreateSimpleBadRequest(message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      400,
		Message:   "Bad Request",
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: message,
			},
		},
	}
}
func CreateSimpleNotFound(message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      404,
		Message:   "Not Found",
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: message,
			},
		},
	}
}
func CreateSimpleInternalServerError(message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      500,
		Message:   "Internal Server Error",
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: message,
			},
		},
	}
}

// CreateErrorResponseFrom maps a pipeline error onto its HTTP
// shape using the taxonomy's status codes.
func CreateErrorResponseFrom(err error) dtos.GeneralErrorResponseDto {
	code := apperrors.HTTPStatusCode(err)
	return dtos.GeneralErrorResponseDto{
		Code:      code,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: err.Error(),
			},
		},
	}
}

// --
