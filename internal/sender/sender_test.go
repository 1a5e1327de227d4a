package sender

import (
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/config"
	"github.com/rateworks/refi-outreach/internal/dispatch"
	"github.com/rateworks/refi-outreach/internal/model"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSendDryRunWithoutCredentials(t *testing.T) {
	s := New(&config.AppConfig{}, quietLogger())

	jobs := []dispatch.Job{
		{Channel: model.ChannelEmail, To: dispatch.Recipient{Name: "Maria", Email: "m@example.com"}},
		{Channel: model.ChannelSMS, To: dispatch.Recipient{Name: "Maria", Phone: "206-555-0101"}},
		{Channel: model.ChannelVoiceCall, To: dispatch.Recipient{Name: "Maria", Phone: "206-555-0101"}},
	}
	for _, j := range jobs {
		if status := s.Send(j); status != "dry_run" {
			t.Errorf("%s: expected dry_run without credentials, got %q", j.Channel, status)
		}
	}
}

func TestSendUnknownChannel(t *testing.T) {
	s := New(&config.AppConfig{}, quietLogger())
	status := s.Send(dispatch.Job{Channel: model.Channel("fax")})
	if !strings.HasPrefix(status, "error:") {
		t.Errorf("expected error status for unknown channel, got %q", status)
	}
}

// A black-holed SMTP host must fail within the send deadline instead of
// stalling the dispatch job.
func TestSendEmailTimesOutOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	// Accept connections but never send the SMTP greeting.
	var mu sync.Mutex
	var held []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range held {
			conn.Close()
		}
	})

	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("failed to split address: %v", err)
	}

	s := New(&config.AppConfig{
		SMTPHost:   host,
		SMTPPort:   port,
		SMTPUser:   "user",
		SMTPPass:   "pass",
		NotifyFrom: "clair@example.com",
	}, quietLogger())
	s.timeout = 200 * time.Millisecond

	start := time.Now()
	status := s.sendEmail(
		dispatch.Recipient{Name: "Maria", Email: "maria@example.com"},
		dispatch.Message{Subject: "hello", Body: "hi"},
	)
	elapsed := time.Since(start)

	if !strings.HasPrefix(status, "error:") {
		t.Fatalf("expected error status, got %q", status)
	}
	if elapsed > 2*time.Second {
		t.Errorf("send stalled for %v, expected the deadline to cut it off", elapsed)
	}
}
