package models

// Login attempt outcomes recorded in the audit log.
const (
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailed  = "LOGIN_FAILED"
)

// LoginLogRecord is an append-only audit entry for one login attempt.
// UserID and UserName are absent on failed recognition; Confidence is
// present only on success, Reason only on failure.
type LoginLogRecord struct {
	LogID      string `dynamodbav:"log_id" json:"log_id"`
	UserID     string `dynamodbav:"user_id,omitempty" json:"user_id,omitempty"`
	UserName   string `dynamodbav:"user_name,omitempty" json:"user_name,omitempty"`
	Action     string `dynamodbav:"action" json:"action"`
	Confidence string `dynamodbav:"confidence,omitempty" json:"confidence,omitempty"`
	Timestamp  string `dynamodbav:"timestamp" json:"timestamp"`
	Reason     string `dynamodbav:"reason,omitempty" json:"reason,omitempty"`
}
