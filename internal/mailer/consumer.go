package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartConsumer connects to RabbitMQ, declares the OTP queue and
// delivers each job by email.  It runs a reconnect loop with capped
// backoff and never returns under normal operation; run it from a
// goroutine in main.  Individual delivery failures are logged and the
// message rejected without requeue so a bad job cannot wedge the
// worker.
func StartConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("otp-mailer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("otp-mailer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("otp-mailer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(otpQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(otpQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("otp-mailer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var job OTPEmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return deliver(job)
}

// deliver sends the code over SMTP.  Without SMTP_HOST configured the
// job is logged instead, which keeps local development working with
// no mail server.
func deliver(job OTPEmailJob) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("otp-mailer: SMTP not configured; code for %s is %s", job.Email, job.Code)
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@localhost"
	}

	msg := []byte("From: " + from + "\r\n" +
		"To: " + job.Email + "\r\n" +
		"Subject: Verification code\r\n" +
		"\r\n" +
		"Your verification code is " + job.Code + ". It expires shortly; do not share it.\r\n")

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASS"), host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{job.Email}, msg)
}
