// Package mailer dispatches one-time codes to users.  The publisher
// side is the core's mail collaborator: it drops a job on a durable
// queue and reports the publish outcome.  The consumer side is a
// background worker that delivers queued jobs over SMTP.
package mailer

// OTPEmailJob is the payload exchanged over the message broker for a
// single verification-code delivery.
type OTPEmailJob struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	IssuedAt string `json:"issued_at"`
}

// otpQueueName is the durable queue both sides declare.
const otpQueueName = "auth.otp.email"
