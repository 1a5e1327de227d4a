// internal/sender/sender.go
package sender

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/config"
	"github.com/rateworks/refi-outreach/internal/dispatch"
	"github.com/rateworks/refi-outreach/internal/model"
)

// Senders performs real channel delivery for dispatch jobs. Every
// channel degrades to a logged dry run when its provider credentials
// are not configured, so demo deployments never hit SMTP or the
// gateways by accident.
type Senders struct {
	cfg     *config.AppConfig
	log     *logrus.Logger
	client  *http.Client
	timeout time.Duration
}

func New(cfg *config.AppConfig, log *logrus.Logger) *Senders {
	// Bounded per-dispatch timeout so a slow provider cannot stall
	// the consumer.
	const timeout = 10 * time.Second
	return &Senders{
		cfg:     cfg,
		log:     log,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Send executes one dispatch job and returns a delivery status string.
func (s *Senders) Send(j dispatch.Job) string {
	switch j.Channel {
	case model.ChannelEmail:
		return s.sendEmail(j.To, j.Message)
	case model.ChannelSMS:
		return s.sendSMS(j.To, j.Message)
	case model.ChannelVoiceCall:
		return s.placeCall(j.To, j.Message)
	default:
		return fmt.Sprintf("error: unknown channel %s", j.Channel)
	}
}

func (s *Senders) sendEmail(to dispatch.Recipient, msg dispatch.Message) string {
	if s.cfg.SMTPUser == "" || s.cfg.SMTPPass == "" {
		s.log.Infof("📧 [DRY RUN] Email to %s <%s>: %s", to.Name, to.Email, msg.Subject)
		return "dry_run"
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.NotifyFrom, to.Email, msg.Subject, msg.Body)

	if err := s.smtpSend(to.Email, []byte(body)); err != nil {
		s.log.Errorf("📧 Failed to email %s: %v", to.Name, err)
		return fmt.Sprintf("error: %v", err)
	}
	s.log.Infof("📧 Email sent to %s <%s>", to.Name, to.Email)
	return "sent"
}

// smtpSend mirrors smtp.SendMail but with a connection deadline, so a
// black-holed SMTP host cannot stall a dispatch job.
func (s *Senders) smtpSend(rcpt string, body []byte) error {
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
			return err
		}
	}
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(s.cfg.NotifyFrom); err != nil {
		return err
	}
	if err := c.Rcpt(rcpt); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *Senders) sendSMS(to dispatch.Recipient, msg dispatch.Message) string {
	if s.cfg.SMSAPIKey == "" || to.Phone == "" {
		s.log.Infof("💬 [DRY RUN] SMS to %s: %.80s", orPlaceholder(to.Phone), msg.Body)
		return "dry_run"
	}

	payload, _ := json.Marshal(map[string]string{
		"senderid": s.cfg.SMSSenderID,
		"to":       to.Phone,
		"message":  msg.Body,
	})
	status := s.post(s.cfg.SMSGatewayURL, s.cfg.SMSAPIKey, payload)
	if status == "sent" {
		s.log.Infof("💬 SMS sent to %s", to.Phone)
	} else {
		s.log.Errorf("💬 SMS failed to %s: %s", to.Phone, status)
	}
	return status
}

func (s *Senders) placeCall(to dispatch.Recipient, msg dispatch.Message) string {
	if s.cfg.VoiceGatewayURL == "" || s.cfg.VoiceAPIKey == "" || to.Phone == "" {
		s.log.Infof("📞 [DRY RUN] Call to %s: %.80s", orPlaceholder(to.Phone), msg.Body)
		return "dry_run"
	}

	payload, _ := json.Marshal(map[string]string{
		"to":       to.Phone,
		"greeting": msg.Body,
	})
	status := s.post(s.cfg.VoiceGatewayURL, s.cfg.VoiceAPIKey, payload)
	if status == "sent" {
		status = "call_initiated"
		s.log.Infof("📞 Call initiated to %s", to.Phone)
	} else {
		s.log.Errorf("📞 Call failed to %s: %s", to.Phone, status)
	}
	return status
}

func (s *Senders) post(url, apiKey string, payload []byte) string {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Sprintf("error: gateway returned %d", resp.StatusCode)
	}
	return "sent"
}

func orPlaceholder(phone string) string {
	if phone == "" {
		return "NO_PHONE"
	}
	return phone
}
