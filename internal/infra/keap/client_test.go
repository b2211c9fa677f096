package keap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "test-key", 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "", time.Second)
	if _, ok := err.(*AuthError); !ok {
		t.Errorf("err = %T, want *AuthError", err)
	}
}

func TestParseNextOffset(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name string
		next string
		want *int
	}{
		{"empty", "", nil},
		{"with offset", "https://api.keap.com/crm/rest/v1/contacts?limit=50&offset=150", intPtr(150)},
		{"zero offset", "https://api.keap.com/crm/rest/v1/contacts?offset=0", intPtr(0)},
		{"no offset param", "https://api.keap.com/crm/rest/v1/contacts?limit=50", nil},
		{"non-numeric offset", "https://api.keap.com/crm/rest/v1/contacts?offset=abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNextOffset(tt.next)
			switch {
			case got == nil && tt.want != nil:
				t.Errorf("got nil, want %d", *tt.want)
			case got != nil && tt.want == nil:
				t.Errorf("got %d, want nil", *got)
			case got != nil && tt.want != nil && *got != *tt.want:
				t.Errorf("got %d, want %d", *got, *tt.want)
			}
		})
	}
}

func TestAPIKeyHeaderSent(t *testing.T) {
	var gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Keap-API-Key")
		w.Write([]byte(`{"contacts": []}`))
	})

	if _, _, err := c.ListContacts(50, 0, nil); err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("API key header = %q, want test-key", gotKey)
	}
}

func TestRateLimitWithThrottleHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-keap-product-throttle-available", "12")
		w.Header().Set("x-keap-tenant-throttle-available", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, err := c.ListContacts(50, 0, nil)
	rl, ok := err.(*RateLimitError)
	if !ok {
		t.Fatalf("err = %T, want *RateLimitError", err)
	}
	if !rl.Throttle.HasCapacity() {
		t.Error("throttle should report remaining capacity")
	}
	if rl.Throttle.ProductThrottleAvailable != 12 || rl.Throttle.TenantThrottleAvailable != 3 {
		t.Errorf("throttle = %+v", rl.Throttle)
	}
	if !IsRetryable(err) {
		t.Error("rate limit errors must be retryable")
	}
}

func TestQuotaExhaustion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-keap-product-quota-available", "0")
		w.Header().Set("x-keap-product-quota-limit", "25000")
		w.Header().Set("x-keap-product-quota-used", "25000")
		w.Header().Set("x-keap-product-quota-time-unit", "day")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, err := c.ListContacts(50, 0, nil)
	if !IsQuotaExhausted(err) {
		t.Fatalf("err = %T (%v), want quota exhaustion", err, err)
	}
	if IsRetryable(err) {
		t.Error("quota exhaustion must not be retryable")
	}
}

func TestQuotaIgnoredForNonDailyWindow(t *testing.T) {
	// A zero quota counter for a non-daily window is an ordinary throttle.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-keap-product-quota-available", "0")
		w.Header().Set("x-keap-product-quota-time-unit", "minute")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, err := c.ListContacts(50, 0, nil)
	if IsQuotaExhausted(err) {
		t.Fatal("minute-window quota must not be treated as daily exhaustion")
	}
	if _, ok := err.(*RateLimitError); !ok {
		t.Errorf("err = %T, want *RateLimitError", err)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		check     func(error) bool
		retryable bool
	}{
		{"not found", http.StatusNotFound, IsNotFound, false},
		{"unauthorized", http.StatusUnauthorized, func(err error) bool {
			_, ok := err.(*AuthError)
			return ok
		}, false},
		{"bad request", http.StatusBadRequest, func(err error) bool {
			_, ok := err.(*ValidationError)
			return ok
		}, false},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			_, ok := err.(*ServerError)
			return ok
		}, true},
		{"bad gateway", http.StatusBadGateway, func(err error) bool {
			_, ok := err.(*ServerError)
			return ok
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, _, err := c.ListContacts(50, 0, nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("wrong error type: %T", err)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestPrepareParams(t *testing.T) {
	params := prepareParams(50, 150, map[string]string{"since": "2026-01-01T00:00:00Z", "empty": ""})

	if got := params.Get("limit"); got != "50" {
		t.Errorf("limit = %q", got)
	}
	if got := params.Get("offset"); got != "150" {
		t.Errorf("offset = %q", got)
	}
	if got := params.Get("since"); got != "2026-01-01T00:00:00Z" {
		t.Errorf("since = %q", got)
	}
	if params.Has("empty") {
		t.Error("empty extras must be dropped")
	}
}

func TestListContactsDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"contacts": [
				{"id": 1, "given_name": "Ada", "email_addresses": [{"email": "ada@example.com", "field": "EMAIL1"}]},
				{"id": 2, "given_name": "Grace", "tag_ids": [10, 20]}
			],
			"next": "https://api.keap.com/crm/rest/v1/contacts?limit=2&offset=2",
			"count": 2
		}`))
	})

	contacts, page, err := c.ListContacts(2, 0, nil)
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	if contacts[0].GivenName != "Ada" || len(contacts[0].EmailAddresses) != 1 {
		t.Errorf("contact[0] = %+v", contacts[0])
	}
	if len(contacts[1].TagIDs) != 2 {
		t.Errorf("contact[1].TagIDs = %v", contacts[1].TagIDs)
	}
	next := ParseNextOffset(page.Next)
	if next == nil || *next != 2 {
		t.Errorf("next offset = %v, want 2", next)
	}
}
