package audit

import (
	"context"
	"testing"
)

func TestDisabledPublisherIsSafe(t *testing.T) {
	var p *Publisher
	p.Record(context.Background(), Entry{Action: ActionLogin})

	disabled := NewPublisher(nil, nil)
	disabled.Record(context.Background(), Entry{Action: ActionLogout})
}
