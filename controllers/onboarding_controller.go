package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"carbonlens/web/backend"
	"carbonlens/web/dispatcher"
	"carbonlens/web/models"
	"carbonlens/web/sessions"
	"carbonlens/web/utils"
	"carbonlens/web/wizard"
)

// completion runs detached from the request so a dropped connection does not
// abort a registration or checkout halfway.
const completionTimeout = 60 * time.Second

// TokenHeader carries a refreshed session token on every onboarding response.
const TokenHeader = "X-Onboarding-Token"

type stateResponse struct {
	Step                 int                `json:"step"`
	TotalSteps           int                `json:"total_steps"`
	Progress             int                `json:"progress"`
	State                wizard.State       `json:"state"`
	Processing           bool               `json:"processing"`
	Tier                 models.Tier        `json:"tier"`
	Price                float64            `json:"price"`
	Currency             string             `json:"currency"`
	BillingCycle         string             `json:"billing_cycle"`
	RequiresPasswordStep bool               `json:"requires_password_step"`
	ShowEnterpriseNotice bool               `json:"show_enterprise_notice"`
	FinalLabel           string             `json:"final_label"`
	Errors               wizard.FieldErrors `json:"errors"`
	Data                 models.UserData    `json:"data"`
}

func stateOf(s *sessions.Session) stateResponse {
	w := s.Wizard
	p := w.Policy()
	return stateResponse{
		Step:                 w.Step(),
		TotalSteps:           wizard.TotalSteps,
		Progress:             w.Progress(),
		State:                w.State(),
		Processing:           w.Processing(),
		Tier:                 p.Tier,
		Price:                w.Price(),
		Currency:             w.Currency(),
		BillingCycle:         s.BillingCycle,
		RequiresPasswordStep: p.RequiresPasswordStep,
		ShowEnterpriseNotice: w.ShowsEnterpriseNotice(),
		FinalLabel:           p.FinalLabel,
		Errors:               w.Errors(),
		Data:                 w.Data().Redacted(),
	}
}

func StartOnboarding(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StartOnboardingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}
		cur := "GBP"
		if req.Currency != "" {
			unit, err := currency.ParseISO(req.Currency)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown currency"})
				return
			}
			cur = unit.String()
		}
		cycle := strings.ToLower(req.BillingCycle)
		switch cycle {
		case "":
			cycle = "monthly"
		case "monthly", "annual":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "billing_cycle must be monthly or annual"})
			return
		}

		sess, err := d.Sessions.Create(cycle, func(s *sessions.Session) (*wizard.Wizard, error) {
			return wizard.New(req.Tier, req.Price, cur, wizard.Callbacks{
				OnComplete: completeFunc(d, s),
			})
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token, err := utils.GenerateJWT(d.Config.SessionSecret, sess.ID, d.Config.SessionTTL)
		if err != nil {
			d.Sessions.Delete(sess.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
			return
		}
		d.Log.Debug("onboarding started", zap.String("session", sess.ID), zap.String("tier", string(req.Tier)))
		c.JSON(http.StatusCreated, gin.H{"token": token, "state": stateOf(sess)})
	}
}

func completeFunc(d Deps, s *sessions.Session) func(ctx context.Context, data models.UserData) error {
	return func(ctx context.Context, data models.UserData) error {
		w := s.Wizard
		res, err := d.Dispatcher.Complete(ctx, dispatcher.Request{
			Data:             data,
			Policy:           w.Policy(),
			Price:            w.Price(),
			Currency:         w.Currency(),
			BillingCycle:     s.BillingCycle,
			SkipRegistration: s.Registered(),
		})
		if res.Registered {
			s.MarkRegistered()
			w.FreezeAccountFields()
		}
		if err != nil {
			return err
		}
		s.SetResult(res)
		return nil
	}
}

func GetOnboarding(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, d)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": stateOf(sess)})
	}
}

func UpdateOnboardingFields(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, d)
		if !ok {
			return
		}
		var req models.UpdateFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil || (req.Field == "" && len(req.Fields) == 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		updates := map[wizard.Field]string{}
		for k, v := range req.Fields {
			updates[wizard.Field(k)] = v
		}
		if req.Field != "" {
			updates[wizard.Field(req.Field)] = req.Value
		}
		if err := sess.Wizard.UpdateFields(updates); err != nil {
			wizardError(c, sess, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": stateOf(sess)})
	}
}

func NextOnboardingStep(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, d)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
		defer cancel()
		out, err := sess.Wizard.Next(ctx)
		if err != nil {
			var se *dispatcher.StageError
			if errors.As(err, &se) {
				c.JSON(http.StatusBadGateway, gin.H{
					"error": "could not complete signup, please try again",
					"stage": se.Stage,
					"kind":  backend.KindOf(err),
					"state": stateOf(sess),
				})
				return
			}
			wizardError(c, sess, err)
			return
		}
		switch out {
		case wizard.OutcomeBlocked:
			st := stateOf(sess)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": st.Errors, "state": st})
		case wizard.OutcomeCompleted:
			res, _ := sess.Result()
			st := stateOf(sess)
			d.Sessions.Delete(sess.ID)
			c.JSON(http.StatusOK, gin.H{"outcome": out, "action": res.Action, "redirect_url": res.RedirectURL, "state": st})
		default:
			c.JSON(http.StatusOK, gin.H{"outcome": out, "state": stateOf(sess)})
		}
	}
}

func BackOnboardingStep(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, d)
		if !ok {
			return
		}
		out, err := sess.Wizard.Back()
		if err != nil {
			wizardError(c, sess, err)
			return
		}
		if out == wizard.OutcomeCancelled {
			d.Sessions.Delete(sess.ID)
		}
		c.JSON(http.StatusOK, gin.H{"outcome": out, "state": stateOf(sess)})
	}
}

func CancelOnboarding(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lookup(c, d)
		if !ok {
			return
		}
		if err := sess.Wizard.Cancel(); err != nil {
			wizardError(c, sess, err)
			return
		}
		d.Sessions.Delete(sess.ID)
		c.JSON(http.StatusOK, gin.H{"outcome": wizard.OutcomeCancelled})
	}
}

func lookup(c *gin.Context, d Deps) (*sessions.Session, bool) {
	sess, err := d.Sessions.Get(c.GetString("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "onboarding session not found or expired"})
		return nil, false
	}
	// the token lifetime slides with the session's idle TTL
	if tok, err := utils.GenerateJWT(d.Config.SessionSecret, sess.ID, d.Config.SessionTTL); err == nil {
		c.Header(TokenHeader, tok)
	}
	return sess, true
}

func wizardError(c *gin.Context, sess *sessions.Session, err error) {
	switch {
	case errors.Is(err, wizard.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "signup is already being processed"})
	case errors.Is(err, wizard.ErrFrozen):
		c.JSON(http.StatusConflict, gin.H{"error": "account details are already registered and can no longer be changed", "state": stateOf(sess)})
	case errors.Is(err, wizard.ErrClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "onboarding is already finished"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "state": stateOf(sess)})
	}
}
