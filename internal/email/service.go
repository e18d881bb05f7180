package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"gymplan/internal/logger"
	"gymplan/internal/metrics"
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewWithClient is used by tests to inject a redis mock.
func NewWithClient(client *redis.Client, fromEmail, fromName string) *Service {
	return &Service{
		redis:    client,
		from:     fromEmail,
		fromName: fromName,
	}
}

func (s *Service) Send(ctx context.Context, to, name, emailType, subject, body string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Type:    emailType,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, "emails", data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		metrics.RecordEmail(emailType, "queue_failed")
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, "emails").Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), "emails", data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after 3 attempts", job.To)
			metrics.RecordEmail(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), "emails:failed", data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, "emails").Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

// SendVerificationCode delivers a registration verification code.
func (s *Service) SendVerificationCode(ctx context.Context, email, name, code string) error {
	subject := "Verify your GymPlan account"
	body := fmt.Sprintf(`Hi %s,

Welcome to GymPlan! Enter this code to verify your email address:

    %s

The code is valid until you request a new one.

- GymPlan Team`, name, code)

	return s.Send(ctx, email, name, "verification", subject, body)
}

// SendPasswordResetCode delivers a password reset code.
func (s *Service) SendPasswordResetCode(ctx context.Context, email, name, code string) error {
	subject := "GymPlan password reset"
	body := fmt.Sprintf(`Hi %s,

Use this code to reset your password:

    %s

If you did not request a reset, you can ignore this email.

- GymPlan Team`, name, code)

	return s.Send(ctx, email, name, "password_reset", subject, body)
}

func (s *Service) SendEnrollmentNotice(ctx context.Context, email, name, gymName string, endDate time.Time) error {
	subject := "Welcome to " + gymName
	body := fmt.Sprintf(`Hi %s,

You have been enrolled at %s. Your membership runs until %s.

See you at the gym!

- GymPlan Team`, name, gymName, endDate.Format("Jan 2, 2006"))

	return s.Send(ctx, email, name, "enrollment", subject, body)
}

func (s *Service) SendWithdrawalNotice(ctx context.Context, email, name, gymName string) error {
	subject := "Membership ended - " + gymName
	body := fmt.Sprintf(`Hi %s,

Your membership at %s has ended.

- GymPlan Team`, name, gymName)

	return s.Send(ctx, email, name, "withdrawal", subject, body)
}
