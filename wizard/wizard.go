package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"carbonlens/web/models"
)

const TotalSteps = 3

var (
	ErrClosed       = errors.New("wizard is closed")
	ErrInProgress   = errors.New("completion already in progress")
	ErrUnknownField = errors.New("unknown field")
	ErrFrozen       = errors.New("field can no longer be changed")
)

type State string

const (
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Outcome describes the transition a Next or Back call produced.
type Outcome string

const (
	OutcomeBlocked   Outcome = "blocked"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeRetreated Outcome = "retreated"
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// Callbacks are owned by the caller. OnComplete receives the finished draft by value.
type Callbacks struct {
	OnComplete func(ctx context.Context, data models.UserData) error
	OnCancel   func()
}

// Wizard is the three step onboarding controller. It is safe for concurrent use;
// OnComplete runs without the lock held.
type Wizard struct {
	mu         sync.Mutex
	policy     Policy
	price      float64
	currency   string
	step       int
	data       models.UserData
	errs       FieldErrors
	state      State
	processing bool
	frozen     bool
	cb         Callbacks
}

func New(tier models.Tier, price float64, currency string, cb Callbacks) (*Wizard, error) {
	p, err := PolicyFor(tier)
	if err != nil {
		return nil, err
	}
	return &Wizard{
		policy:   p,
		price:    price,
		currency: currency,
		step:     1,
		errs:     FieldErrors{},
		state:    StateActive,
		cb:       cb,
	}, nil
}

// Update sets one field on the draft and clears that field's error only.
func (w *Wizard) Update(f Field, value string) error {
	return w.UpdateFields(map[Field]string{f: value})
}

// UpdateFields applies all updates or none of them.
func (w *Wizard) UpdateFields(updates map[Field]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateActive {
		return ErrClosed
	}
	if w.processing {
		return ErrInProgress
	}
	for f := range updates {
		if w.fieldPtr(f) == nil {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		if w.frozen {
			return fmt.Errorf("%w: %s", ErrFrozen, f)
		}
	}
	for f, v := range updates {
		*w.fieldPtr(f) = v
		delete(w.errs, f)
	}
	return nil
}

// FreezeAccountFields locks the draft once the account exists, so a retry cannot
// drift from what was registered.
func (w *Wizard) FreezeAccountFields() {
	w.mu.Lock()
	w.frozen = true
	w.mu.Unlock()
}

func (w *Wizard) fieldPtr(f Field) *string {
	switch f {
	case FieldFirstName:
		return &w.data.FirstName
	case FieldLastName:
		return &w.data.LastName
	case FieldEmail:
		return &w.data.Email
	case FieldCompanyName:
		return &w.data.CompanyName
	case FieldCompanySize:
		return &w.data.CompanySize
	case FieldIndustry:
		return &w.data.Industry
	case FieldPhone:
		return &w.data.Phone
	case FieldPassword:
		return &w.data.Password
	case FieldConfirmPassword:
		return &w.data.ConfirmPassword
	}
	return nil
}

// Next validates the current step. On the last step it hands the draft to
// OnComplete; a failure there leaves the wizard exactly as it was.
func (w *Wizard) Next(ctx context.Context) (Outcome, error) {
	w.mu.Lock()
	if w.state != StateActive {
		w.mu.Unlock()
		return "", ErrClosed
	}
	if w.processing {
		w.mu.Unlock()
		return "", ErrInProgress
	}
	w.errs = Validate(w.step, w.data, w.policy.RequiresPasswordStep)
	if !w.errs.OK() {
		w.mu.Unlock()
		return OutcomeBlocked, nil
	}
	if w.step < TotalSteps {
		w.step++
		w.mu.Unlock()
		return OutcomeAdvanced, nil
	}

	w.processing = true
	data := w.data
	w.mu.Unlock()

	var err error
	if w.cb.OnComplete != nil {
		err = w.cb.OnComplete(ctx, data)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.processing = false
	if err != nil {
		return "", err
	}
	w.state = StateCompleted
	return OutcomeCompleted, nil
}

// Back retreats one step; at step 1 it cancels.
func (w *Wizard) Back() (Outcome, error) {
	w.mu.Lock()
	if w.state != StateActive {
		w.mu.Unlock()
		return "", ErrClosed
	}
	if w.processing {
		w.mu.Unlock()
		return "", ErrInProgress
	}
	if w.step > 1 {
		w.step--
		w.errs = FieldErrors{}
		w.mu.Unlock()
		return OutcomeRetreated, nil
	}
	w.mu.Unlock()
	if err := w.Cancel(); err != nil {
		return "", err
	}
	return OutcomeCancelled, nil
}

// Cancel discards the draft. It never performs I/O itself.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	if w.state != StateActive {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.processing {
		w.mu.Unlock()
		return ErrInProgress
	}
	w.state = StateCancelled
	w.data = models.UserData{}
	w.errs = FieldErrors{}
	w.mu.Unlock()
	if w.cb.OnCancel != nil {
		w.cb.OnCancel()
	}
	return nil
}

func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Progress is the rounded percentage step/TotalSteps.
func (w *Wizard) Progress() int {
	return int(math.Round(float64(w.Step()) / TotalSteps * 100))
}

func (w *Wizard) Errors() FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(FieldErrors, len(w.errs))
	for k, v := range w.errs {
		out[k] = v
	}
	return out
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Processing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processing
}

func (w *Wizard) Data() models.UserData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

func (w *Wizard) Policy() Policy { return w.policy }

func (w *Wizard) Price() float64 { return w.price }

func (w *Wizard) Currency() string { return w.currency }

// ShowsEnterpriseNotice reports whether the current step renders the contact notice
// instead of password fields.
func (w *Wizard) ShowsEnterpriseNotice() bool {
	return !w.policy.RequiresPasswordStep && w.Step() == TotalSteps
}
