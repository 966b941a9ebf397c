package cape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"capescraper/internal/assert"
	"capescraper/internal/chrono"
	"capescraper/internal/telemetry"
)

const (
	SSOUsernameInput  = `[name="urn:mace:ucsd.edu:sso:username"]`
	SSOPasswordInput  = `[name="urn:mace:ucsd.edu:sso:password"]`
	SSOLoginError     = "#_login_error_message"
	authenticatedPath = "/responses/"

	// sent as the enter key
	enterKey = "\r"

	DefaultSecondFactorTimeout = time.Minute
)

const (
	report_login_second_factor = "login.second-factor"
)

var (
	ErrBadCredentials      = errors.New("sso rejected the username or password")
	ErrSecondFactorTimeout = errors.New("second factor was not approved in time")
)

// LocatedSession is a Session that can also tell which url its tab is on.
type LocatedSession interface {
	Session
	Location(ctx context.Context) (string, error)
}

type LoginOptions struct {
	URL      string
	Username string
	Password string
	// SecondFactorTimeout bounds the wait for the push approval, defaults to a minute.
	SecondFactorTimeout time.Duration
	// OnSecondFactor is called once the credentials were accepted and the push is pending.
	OnSecondFactor func()
}

// Login signs the session in through single sign on and waits until the second factor brings the tab
// back to the results form. A session that is still signed in (ex. a reused browser profile) is left as is.
func Login(ctx context.Context, session LocatedSession, clock chrono.TimeAPI, tel telemetry.API, opts LoginOptions) error {
	assert.NotNil(session)
	assert.NotNil(clock)
	assert.NotNil(tel)

	if opts.URL == "" {
		opts.URL = BaseURL
	}
	if opts.SecondFactorTimeout == 0 {
		opts.SecondFactorTimeout = DefaultSecondFactorTimeout
	}
	assert.PositiveDuration("second factor timeout", opts.SecondFactorTimeout)

	err := session.Navigate(ctx, opts.URL)
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", opts.URL, err)
	}
	done, err := atResults(ctx, session)
	if err != nil || done {
		return err
	}

	if opts.Username == "" || opts.Password == "" {
		return fmt.Errorf("sign in required: %w", ErrBadCredentials)
	}
	username, err := session.Find(ctx, SSOUsernameInput)
	if err != nil {
		return fmt.Errorf("find username input: %w", err)
	}
	err = username.SendKeys(ctx, opts.Username)
	if err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	password, err := session.Find(ctx, SSOPasswordInput)
	if err != nil {
		return fmt.Errorf("find password input: %w", err)
	}
	err = password.SendKeys(ctx, opts.Password+enterKey)
	if err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	prompted := false
	deadline := clock.Now().Add(opts.SecondFactorTimeout)
	for {
		// the password post reloads the page some time after the keys are sent, the error banner can
		// show up on any pass
		loginErrors, err := session.FindAll(ctx, SSOLoginError)
		if err != nil {
			return fmt.Errorf("check login error: %w", err)
		}
		if len(loginErrors) > 0 {
			return ErrBadCredentials
		}

		done, err := atResults(ctx, session)
		if err != nil {
			return err
		}
		if done {
			tel.ReportDebug("login: signed in")
			return nil
		}
		if !prompted && opts.OnSecondFactor != nil {
			opts.OnSecondFactor()
		}
		prompted = true

		if !clock.Now().Before(deadline) {
			tel.ReportWarning(report_login_second_factor, opts.SecondFactorTimeout)
			return ErrSecondFactorTimeout
		}
		err = clock.Sleep(ctx, time.Second)
		if err != nil {
			return err
		}
	}
}

func atResults(ctx context.Context, session LocatedSession) (bool, error) {
	location, err := session.Location(ctx)
	if err != nil {
		return false, fmt.Errorf("read location: %w", err)
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return false, nil
	}
	// the sso redirect carries the results url in its query, only the path counts
	return strings.Contains(parsed.Path, authenticatedPath), nil
}
