package domain

import "time"

// VerificationCode is one issued one-time code.
// PK: user_id, SK: code_id (ULID, so range order is creation order).
// Records are append-only.
type VerificationCode struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	CodeID    string    `json:"id" dynamodbav:"code_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at,omitempty" dynamodbav:"expires_at,omitempty"` // TTL (Unix seconds), 0 = never
}

// Expired reports whether the record carries an expiry that is before now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return v.ExpiresAt != 0 && v.ExpiresAt < now.Unix()
}

// Affiliation is the university affiliation derived from a verified student email.
type Affiliation struct {
	University string `json:"university" dynamodbav:"university"`
	StudentID  string `json:"student_id" dynamodbav:"student_id"`
	Batch      string `json:"batch" dynamodbav:"batch"`
	Department string `json:"department" dynamodbav:"department"`
	Roll       string `json:"roll" dynamodbav:"roll"`
	Email      string `json:"email" dynamodbav:"email"`
}

type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}
