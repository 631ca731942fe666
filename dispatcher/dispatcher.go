package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"carbonlens/web/backend"
	"carbonlens/web/models"
	"carbonlens/web/wizard"
)

// Backend is the subset of the API client the pipeline calls.
type Backend interface {
	Register(ctx context.Context, req backend.RegisterRequest) (backend.RegisterResponse, error)
	ListTiers(ctx context.Context) ([]backend.SubscriptionTier, error)
	CreateCheckoutSession(ctx context.Context, req backend.CheckoutRequest) (backend.CheckoutSession, error)
}

type Recorder interface {
	RecordAttempt(ctx context.Context, a models.SignupAttempt) error
}

type Stage string

const (
	StageRegister        Stage = "register"
	StageResolvePayments Stage = "resolve_payments"
	StageLookupTier      Stage = "lookup_tier"
	StageCreateCheckout  Stage = "create_checkout"
)

// StageError attributes a failed completion to the pipeline stage that broke.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

type Options struct {
	LoginURL                string
	CheckoutSuccessURL      string
	CheckoutCancelURL       string
	SalesEmail              string
	PaymentsPublishableKey  string
	PaymentsCheckoutBaseURL string
}

type Request struct {
	Data         models.UserData
	Policy       wizard.Policy
	Price        float64
	Currency     string
	BillingCycle string
	// SkipRegistration is set on a retry after registration already went through.
	SkipRegistration bool
}

type Result struct {
	Action      wizard.FinalAction `json:"action"`
	RedirectURL string             `json:"redirect_url"`
	SessionID   string             `json:"session_id,omitempty"`
	Registered  bool               `json:"registered"`
}

type Dispatcher struct {
	api      Backend
	recorder Recorder
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

func New(api Backend, rec Recorder, opts Options, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{api: api, recorder: rec, opts: opts, log: log, now: time.Now}
}

// Complete runs the final action of the tier. Paid tiers run resolve_payments,
// register, lookup_tier and create_checkout strictly in order; the first failure
// ends the attempt with a *StageError.
func (d *Dispatcher) Complete(ctx context.Context, req Request) (Result, error) {
	res := Result{Action: req.Policy.FinalAction, Registered: req.SkipRegistration}
	var err error
	switch req.Policy.FinalAction {
	case wizard.ActionRegister:
		err = d.register(ctx, req, &res)
		if err == nil {
			res.RedirectURL = withQuery(d.opts.LoginURL, "registered", "true")
		}
	case wizard.ActionCheckout:
		err = d.checkout(ctx, req, &res)
	case wizard.ActionContactSales:
		res.RedirectURL = d.contactSalesURL(req.Data)
	default:
		err = fmt.Errorf("unsupported final action %q", req.Policy.FinalAction)
	}
	d.record(ctx, req, res, err)
	return res, err
}

func (d *Dispatcher) register(ctx context.Context, req Request, res *Result) error {
	if req.SkipRegistration {
		return nil
	}
	u := req.Data
	_, err := d.api.Register(ctx, backend.RegisterRequest{
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		CompanyName: u.CompanyName,
		CompanySize: u.CompanySize,
		Industry:    u.Industry,
		Phone:       u.Phone,
		Tier:        string(req.Policy.Tier),
		Password:    u.Password,
	})
	if err != nil {
		return &StageError{Stage: StageRegister, Err: err}
	}
	res.Registered = true
	return nil
}

func (d *Dispatcher) checkout(ctx context.Context, req Request, res *Result) error {
	// resolved before registering so a misconfigured provider creates no account
	provider, err := NewPaymentProvider(d.opts.PaymentsPublishableKey, d.opts.PaymentsCheckoutBaseURL)
	if err != nil {
		return &StageError{Stage: StageResolvePayments, Err: err}
	}
	if err := d.register(ctx, req, res); err != nil {
		return err
	}
	tiers, err := d.api.ListTiers(ctx)
	if err != nil {
		return &StageError{Stage: StageLookupTier, Err: err}
	}
	tierID, err := backend.TierID(tiers, string(req.Policy.Tier))
	if err != nil {
		return &StageError{Stage: StageLookupTier, Err: err}
	}
	cycle := req.BillingCycle
	if cycle == "" {
		cycle = "monthly"
	}
	u := req.Data
	session, err := d.api.CreateCheckoutSession(ctx, backend.CheckoutRequest{
		TierID:        tierID,
		Currency:      req.Currency,
		BillingCycle:  cycle,
		SuccessURL:    d.opts.CheckoutSuccessURL,
		CancelURL:     d.opts.CheckoutCancelURL,
		CustomerEmail: u.Email,
		Metadata: map[string]string{
			"first_name":   u.FirstName,
			"last_name":    u.LastName,
			"company_name": u.CompanyName,
			"company_size": u.CompanySize,
			"industry":     u.Industry,
			"phone":        u.Phone,
			"tier":         string(req.Policy.Tier),
		},
	})
	if err != nil {
		return &StageError{Stage: StageCreateCheckout, Err: err}
	}
	redirect, err := provider.RedirectURL(session)
	if err != nil {
		return &StageError{Stage: StageCreateCheckout, Err: err}
	}
	res.SessionID = session.SessionID
	res.RedirectURL = redirect
	return nil
}

func (d *Dispatcher) contactSalesURL(u models.UserData) string {
	subject := "Enterprise plan enquiry"
	if u.CompanyName != "" {
		subject += " - " + u.CompanyName
	}
	body := strings.Join([]string{
		"Name: " + strings.TrimSpace(u.FirstName+" "+u.LastName),
		"Email: " + u.Email,
		"Company: " + u.CompanyName,
		"Company size: " + u.CompanySize,
		"Industry: " + u.Industry,
		"Phone: " + u.Phone,
	}, "\n")
	return "mailto:" + d.opts.SalesEmail + "?subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(body)
}

func (d *Dispatcher) record(ctx context.Context, req Request, res Result, err error) {
	a := models.SignupAttempt{
		Email:       req.Data.Email,
		CompanyName: req.Data.CompanyName,
		Tier:        req.Policy.Tier,
		Action:      string(req.Policy.FinalAction),
		Price:       req.Price,
		Currency:    req.Currency,
		Succeeded:   err == nil,
		SessionID:   res.SessionID,
		CreatedAt:   d.now().UTC(),
	}
	fields := []zap.Field{
		zap.String("tier", string(a.Tier)),
		zap.String("action", a.Action),
		zap.String("currency", a.Currency),
		zap.String("price", strconv.FormatFloat(a.Price, 'f', 2, 64)),
	}
	if err != nil {
		a.Error = err.Error()
		var se *StageError
		if errors.As(err, &se) {
			a.Stage = string(se.Stage)
		}
		d.log.Warn("onboarding completion failed", append(fields, zap.String("stage", a.Stage), zap.Error(err))...)
	} else {
		d.log.Info("onboarding completed", fields...)
	}
	if d.recorder == nil {
		return
	}
	if rerr := d.recorder.RecordAttempt(ctx, a); rerr != nil {
		d.log.Error("record signup attempt", zap.Error(rerr))
	}
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
