package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/"}, Credentials{AccessToken: token})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, Credentials{})
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestRegister_SendsMappedBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, registerPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7, "email": "john@example.com"}`))
	}, "")

	resp, err := c.Register(context.Background(), RegisterRequest{
		Email: "john@example.com", FirstName: "John", LastName: "Smith",
		CompanyName: "Test Company", CompanySize: "11-50", Industry: "Technology", Tier: "free",
	})
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", resp.Email)
	assert.JSONEq(t, `7`, string(resp.ID))
	assert.Equal(t, "John", got["first_name"])
	assert.Equal(t, "Test Company", got["company_name"])
	assert.Equal(t, "", got["phone"])
	assert.NotContains(t, got, "password")
}

func TestRegister_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email": ["user with this email already exists."]}`))
	}, "")

	_, err := c.Register(context.Background(), RegisterRequest{Email: "john@example.com"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, KindStatus, be.Kind)
	assert.Equal(t, http.StatusBadRequest, be.Status)
	assert.Equal(t, "email: user with this email already exists.", be.Message)
}

func TestListTiers_FallsBackToPublic(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == tiersPath {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Authentication credentials were not provided."}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id": 1, "tier": "starter", "name": "Starter"}, {"id": "pro-2", "tier": "professional", "name": "Professional"}]`))
	}, "")

	tiers, err := c.ListTiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{tiersPath, publicTiersPath}, paths)
	require.Len(t, tiers, 2)

	id, err := TierID(tiers, "professional")
	require.NoError(t, err)
	assert.JSONEq(t, `"pro-2"`, string(id))
}

func TestListTiers_SendsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}, "tok")
	tiers, err := c.ListTiers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tiers)
}

func TestTierID(t *testing.T) {
	tiers := []SubscriptionTier{
		{ID: json.RawMessage(`3`), Tier: "STARTER", Name: "Starter plan"},
		{ID: json.RawMessage(`4`), Name: "Professional"},
	}
	id, err := TierID(tiers, "starter")
	require.NoError(t, err)
	assert.Equal(t, "3", string(id))

	id, err = TierID(tiers, "professional")
	require.NoError(t, err)
	assert.Equal(t, "4", string(id))

	_, err = TierID(tiers, "enterprise")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateCheckoutSession(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, checkoutPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"checkout_url": "https://pay.example.com/cs_1", "session_id": "cs_1"}`))
	}, "tok")

	s, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{
		TierID: json.RawMessage(`1`), Currency: "GBP", BillingCycle: "monthly",
		SuccessURL: "https://app/success", CancelURL: "https://app/cancel",
		CustomerEmail: "john@example.com", Metadata: map[string]string{"company_name": "Test Company"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.SessionID)
	assert.Equal(t, float64(1), got["tier_id"])
	assert.Equal(t, "GBP", got["currency"])
	assert.Equal(t, map[string]any{"company_name": "Test Company"}, got["metadata"])
}

func TestCreateCheckoutSession_EmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, "")
	_, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{TierID: json.RawMessage(`1`)})
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestDo_DecodeAndNetworkErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, "")
	_, err := c.ListTiers(context.Background())
	assert.Equal(t, KindDecode, KindOf(err))

	srv := httptest.NewServer(http.NotFoundHandler())
	dead, err := NewClient(Config{BaseURL: srv.URL}, Credentials{})
	require.NoError(t, err)
	srv.Close()
	_, err = dead.ListTiers(context.Background())
	assert.Equal(t, KindNetwork, KindOf(err))
}
