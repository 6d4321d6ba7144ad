package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/thepradipthapa/livechat/config"
)

const (
	emailMaxAttempts = 3
	emailRetryDelay  = 30 * time.Second
)

// EmailTask is a queued request to deliver an OTP code by email. Attempt
// counts deliveries already tried, so a redelivered task knows when to stop.
type EmailTask struct {
	TaskID  string `json:"task_id"`
	Email   string `json:"email"`
	Code    string `json:"code"`
	Attempt int    `json:"attempt"`
}

// EnqueueOTPEmail publishes an email task so the HTTP request does not block
// on SMTP.
func EnqueueOTPEmail(ctx context.Context, email, code string) error {
	if rabbitChannel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}

	task := EmailTask{
		TaskID:  uuid.NewString(),
		Email:   email,
		Code:    code,
		Attempt: 0,
	}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal email task: %w", err)
	}

	return rabbitChannel.PublishWithContext(ctx,
		"", // default exchange
		otpEmailQueue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    task.TaskID,
			Body:         body,
		},
	)
}

// StartEmailWorker consumes the OTP email queue and delivers codes over
// SMTP. Failed deliveries are re-published with a delay, up to
// emailMaxAttempts tries per task.
func StartEmailWorker(ctx context.Context) error {
	if rabbitChannel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}

	msgs, err := rabbitChannel.Consume(
		otpEmailQueue,
		"",
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start email consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var task EmailTask
				if err := json.Unmarshal(msg.Body, &task); err != nil {
					log.Println("Failed to unmarshal email task:", err)
					continue
				}
				if err := sendOTPEmail(task.Email, task.Code); err != nil {
					log.Printf("Email task %s attempt %d failed: %v", task.TaskID, task.Attempt+1, err)
					retryEmailTask(ctx, task)
					continue
				}
				log.Printf("OTP email sent to %s (task %s)", task.Email, task.TaskID)
			}
		}
	}()
	return nil
}

func retryEmailTask(ctx context.Context, task EmailTask) {
	task.Attempt++
	if task.Attempt >= emailMaxAttempts {
		log.Printf("Email task %s dropped after %d attempts", task.TaskID, task.Attempt)
		return
	}
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(emailRetryDelay):
		}
		body, err := json.Marshal(task)
		if err != nil {
			return
		}
		err = rabbitChannel.PublishWithContext(ctx, "", otpEmailQueue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    task.TaskID,
			Body:         body,
		})
		if err != nil {
			log.Printf("Failed to re-publish email task %s: %v", task.TaskID, err)
		}
	}()
}

func sendOTPEmail(email, code string) error {
	if config.AppConfig == nil {
		return fmt.Errorf("AppConfig is not loaded")
	}
	smtpConf := config.AppConfig.SMTP

	subject := "Your OTP code"
	ttlMinutes := int(otpTTL().Minutes())
	body := fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, ttlMinutes)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		smtpConf.From, email, subject, body)

	addr := fmt.Sprintf("%s:%d", smtpConf.Host, smtpConf.Port)
	var auth smtp.Auth
	if smtpConf.User != "" {
		auth = smtp.PlainAuth("", smtpConf.User, smtpConf.Password, smtpConf.Host)
	}
	return smtp.SendMail(addr, auth, smtpConf.From, []string{email}, []byte(msg))
}
