package tools

import (
	"errors"
	"fmt"
	"strings"

	"artisan/internal/fal"
	"artisan/internal/media"
)

// ValidationError is a malformed or out-of-range tool input, caught before
// any remote call. Surfaced to the LLM so it can retry with corrected
// parameters.
type ValidationError struct {
	Tool    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid input %q: %s", e.Tool, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: invalid input: %s", e.Tool, e.Message)
}

// InvalidContextError means the execution context arrived without a user or
// project id. A wiring bug in the caller, never a user-facing condition.
type InvalidContextError struct {
	Tool string
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("%s: invalid tool execution context: missing userId or projectId", e.Tool)
}

func requireContext(toolName string, execCtx ExecContext) error {
	if strings.TrimSpace(execCtx.UserID) == "" || strings.TrimSpace(execCtx.ProjectID) == "" {
		return &InvalidContextError{Tool: toolName}
	}
	return nil
}

// classifyError converts any failure thrown during tool execution into one
// of six buckets and produces a tool-named, user-actionable message. The
// same failure family is explained identically regardless of which tool it
// came from. Typed errors carry their bucket from the point of origin; text
// sniffing remains only as a fallback for failures raised untyped by
// third-party code.
func classifyError(toolName string, err error) error {
	var invocationErr *fal.InvocationError
	if errors.As(err, &invocationErr) {
		switch invocationErr.Kind {
		case fal.FailureNetwork:
			return bucketError(toolName, "Network connectivity issues prevented the request from completing. This is likely a temporary issue.")
		case fal.FailureTimeout:
			return bucketError(toolName, "Request timed out, likely due to complex input or high server load. Suggest trying simpler parameters or trying again later.")
		case fal.FailureContentRejected:
			return bucketError(toolName, "Input was rejected by content safety filters. The user should modify their input to remove potentially problematic content.")
		case fal.FailureRateLimited:
			return bucketError(toolName, "Rate limit exceeded. The user needs to wait before making another request.")
		}
		return bucketError(toolName, fmt.Sprintf("%s. This could be due to service unavailability or an internal error.", invocationErr.Error()))
	}

	var uploadErr *media.UploadFailedError
	if errors.As(err, &uploadErr) {
		return bucketError(toolName, "Generated content could not be saved to storage. The generation completed but file upload failed.")
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "fetch"), strings.Contains(message, "network"):
		return bucketError(toolName, "Network connectivity issues prevented the request from completing. This is likely a temporary issue.")
	case strings.Contains(message, "storage"):
		return bucketError(toolName, "Generated content could not be saved to storage. The generation completed but file upload failed.")
	case strings.Contains(message, "timeout"):
		return bucketError(toolName, "Request timed out, likely due to complex input or high server load. Suggest trying simpler parameters or trying again later.")
	case strings.Contains(message, "invalid"), strings.Contains(message, "rejected"):
		return bucketError(toolName, "Input was rejected by content safety filters. The user should modify their input to remove potentially problematic content.")
	case strings.Contains(message, "rate limit"):
		return bucketError(toolName, "Rate limit exceeded. The user needs to wait before making another request.")
	}
	return bucketError(toolName, fmt.Sprintf("%s. This could be due to service unavailability or an internal error.", err.Error()))
}

func bucketError(toolName, guidance string) error {
	return fmt.Errorf("%s failed: %s", toolName, guidance)
}
