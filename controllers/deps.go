package controllers

import (
	"context"

	"go.uber.org/zap"

	"carbonlens/web/backend"
	"carbonlens/web/config"
	"carbonlens/web/dispatcher"
	"carbonlens/web/models"
	"carbonlens/web/sessions"
)

type Completer interface {
	Complete(ctx context.Context, req dispatcher.Request) (dispatcher.Result, error)
}

type TierLister interface {
	ListTiers(ctx context.Context) ([]backend.SubscriptionTier, error)
}

type SignupLister interface {
	ListAttempts(ctx context.Context, limit, offset int) ([]models.SignupAttempt, error)
}

// Deps is what the handlers share. Signups is nil when the audit log is disabled.
type Deps struct {
	Config     config.Config
	Log        *zap.Logger
	Sessions   *sessions.Store
	Dispatcher Completer
	Tiers      TierLister
	Signups    SignupLister
}
