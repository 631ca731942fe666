package wizard

import (
	"fmt"

	"carbonlens/web/models"
)

// FinalAction is what completing the last step triggers.
type FinalAction string

const (
	ActionRegister     FinalAction = "register"
	ActionCheckout     FinalAction = "checkout"
	ActionContactSales FinalAction = "contact_sales"
)

type Policy struct {
	Tier                 models.Tier
	RequiresPasswordStep bool
	FinalAction          FinalAction
	FinalLabel           string
}

// PolicyFor resolves the step-3 behaviour and final action of a tier.
func PolicyFor(t models.Tier) (Policy, error) {
	switch t {
	case models.TierFree:
		return Policy{Tier: t, RequiresPasswordStep: true, FinalAction: ActionRegister, FinalLabel: "Create Account"}, nil
	case models.TierStarter, models.TierProfessional:
		return Policy{Tier: t, RequiresPasswordStep: true, FinalAction: ActionCheckout, FinalLabel: "Continue to Payment"}, nil
	case models.TierEnterprise:
		// step 3 is the contact notice
		return Policy{Tier: t, RequiresPasswordStep: false, FinalAction: ActionContactSales, FinalLabel: "Contact Sales"}, nil
	}
	return Policy{}, fmt.Errorf("unknown tier %q", t)
}
