package dispatcher

import (
	"strings"

	"carbonlens/web/backend"
)

// PaymentProvider is the client-side handle of the hosted checkout provider.
type PaymentProvider struct {
	publishableKey string
	checkoutBase   string
}

func NewPaymentProvider(publishableKey, checkoutBase string) (*PaymentProvider, error) {
	if strings.TrimSpace(publishableKey) == "" {
		return nil, &backend.Error{Kind: backend.KindConfiguration, Op: "resolve payments", Message: "payments publishable key is not configured"}
	}
	return &PaymentProvider{publishableKey: publishableKey, checkoutBase: strings.TrimRight(checkoutBase, "/")}, nil
}

// RedirectURL picks where to send the browser for a created session.
func (p *PaymentProvider) RedirectURL(s backend.CheckoutSession) (string, error) {
	if s.CheckoutURL != "" {
		return s.CheckoutURL, nil
	}
	if p.checkoutBase != "" && s.SessionID != "" {
		return p.checkoutBase + "/" + s.SessionID, nil
	}
	return "", &backend.Error{Kind: backend.KindDecode, Op: "redirect to checkout", Message: "no checkout url for session " + s.SessionID}
}
