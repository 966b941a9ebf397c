package cape

import (
	"context"
	"strings"
	"time"

	"capescraper/internal/assert"
	"capescraper/internal/chrono"
	"capescraper/internal/telemetry"
)

const (
	DefaultSettleDelay  = time.Second
	DefaultWaitTimeout  = 30 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

type WaitOptions struct {
	// SettleDelay is slept before the first poll. Right after a submit the progress indicator still
	// reads hidden because the postback has not started yet.
	SettleDelay  time.Duration
	Timeout      time.Duration
	PollInterval time.Duration
}

// withDefaults fills the durations left at zero, an explicit negative duration is a programming error.
func (o WaitOptions) withDefaults() WaitOptions {
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultWaitTimeout
	}
	if o.PollInterval == 0 {
		o.PollInterval = DefaultPollInterval
	}
	assert.PositiveDuration("settle delay", o.SettleDelay)
	assert.PositiveDuration("wait timeout", o.Timeout)
	assert.PositiveDuration("poll interval", o.PollInterval)
	return o
}

// LoadWaiter watches the update progress indicator of the results form.
type LoadWaiter struct {
	session Session
	time    chrono.TimeAPI
	tel     telemetry.API
	opts    WaitOptions
}

func NewLoadWaiter(session Session, time chrono.TimeAPI, tel telemetry.API, opts WaitOptions) LoadWaiter {
	assert.NotNil(session)
	assert.NotNil(time)
	assert.NotNil(tel)

	return LoadWaiter{
		session: session,
		time:    time,
		tel:     telemetry.NewScopedAPI("wait", tel),
		opts:    opts.withDefaults(),
	}
}

func isHiddenStyle(style string) bool {
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.Contains(style, "display:none")
}

// Wait blocks until the asynchronous update of the page is done. It returns false if the indicator is
// still visible after the timeout, the error is only set when the run has to stop.
func (w LoadWaiter) Wait(ctx context.Context) (bool, error) {
	err := w.time.Sleep(ctx, w.opts.SettleDelay)
	if err != nil {
		return false, err
	}

	deadline := w.time.Now().Add(w.opts.Timeout)
	for {
		settled, err := w.poll(ctx)
		if err != nil && isFatal(ctx, err) {
			return false, err
		}
		if err != nil {
			w.tel.ReportDebug("progress indicator not readable", err)
		}
		if settled {
			return true, nil
		}

		if !w.time.Now().Before(deadline) {
			return false, nil
		}
		err = w.time.Sleep(ctx, w.opts.PollInterval)
		if err != nil {
			return false, err
		}
	}
}

func (w LoadWaiter) poll(ctx context.Context) (bool, error) {
	indicator, err := w.session.Find(ctx, ProgressIndicator)
	if err != nil {
		return false, err
	}
	style, _, err := indicator.Attribute(ctx, "style")
	if err != nil {
		return false, err
	}
	return isHiddenStyle(style), nil
}
