package shell

import (
	"strconv"
)

const (
	// CommandHandlerRetriesMetric counts repeated rounds of a desk command,
	// labeled with command_type, attempt_number and error_type.
	CommandHandlerRetriesMetric = "circulation_command_retries_total"

	// CommandHandlerRetryDelayMetric records the sleep before a repeated round.
	CommandHandlerRetryDelayMetric = "circulation_command_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts commands that gave up on concurrency conflicts.
	CommandHandlerMaxRetriesReachedMetric = "circulation_command_retries_exhausted_total"

	// LogAttrCommandType is the label carrying the command type.
	LogAttrCommandType = "command_type"
)

const (
	errorTypeNone                = "none"
	errorTypeConcurrencyConflict = "concurrency_conflict"
	errorTypeContextCanceled     = "context_canceled"
	errorTypeDeadlineExceeded    = "context_deadline_exceeded"
	errorTypeOther               = "other"
)

// BuildRetryLabels creates the labels of a retry attempt metric.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   strconv.Itoa(attemptNumber),
		"error_type":       errorType,
	}
}
