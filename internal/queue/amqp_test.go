package queue

import (
	"testing"

	"github.com/streadway/amqp"
)

func TestRetryCountFromHeaderWidths(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int32
	}{
		{"nil headers", nil, 0},
		{"absent header", amqp.Table{}, 0},
		{"int32", amqp.Table{"x-retry-count": int32(2)}, 2},
		{"int64", amqp.Table{"x-retry-count": int64(1)}, 1},
		{"int", amqp.Table{"x-retry-count": 1}, 1},
		{"garbage", amqp.Table{"x-retry-count": "two"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryCountFrom(tc.headers); got != tc.want {
				t.Errorf("retryCountFrom(%v) = %d, want %d", tc.headers, got, tc.want)
			}
		})
	}
}

func TestNextAttemptBumpsRetryHeader(t *testing.T) {
	// First failure: the delivery carried no header, the copy carries 1.
	headers, retry := nextAttempt(nil)
	if !retry {
		t.Fatal("expected first failure to be retried")
	}
	if got := retryCountFrom(headers); got != 1 {
		t.Fatalf("expected republished copy to carry count 1, got %d", got)
	}

	// Second failure bumps again.
	headers, retry = nextAttempt(headers)
	if !retry {
		t.Fatal("expected second failure to be retried")
	}
	if got := retryCountFrom(headers); got != 2 {
		t.Fatalf("expected count 2, got %d", got)
	}

	// Attempt budget spent: no further copy.
	if _, retry = nextAttempt(headers); retry {
		t.Error("expected delivery to be dropped after the attempt budget")
	}
}
