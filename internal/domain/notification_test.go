package domain_test

import (
	"testing"

	"PushRelay/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDispatchPolicy_IsValid(t *testing.T) {
	tests := []struct {
		policy domain.DispatchPolicy
		valid  bool
	}{
		{domain.PolicyLogOnly, true},
		{domain.PolicyAlways, true},
		{domain.PolicyConditional, true},
		{"sometimes", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("policy_"+tt.policy.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.policy.IsValid())
		})
	}
}

func TestNotificationRequest_WithDefaults(t *testing.T) {
	req := domain.NotificationRequest{RecipientID: "u1", Title: "t", Body: "b"}.WithDefaults()
	assert.Equal(t, domain.DefaultCategory, req.Category)
	assert.NotNil(t, req.Metadata)
	assert.Empty(t, req.Metadata)

	req = domain.NotificationRequest{
		Category: "chat",
		Metadata: map[string]interface{}{"k": "v"},
	}.WithDefaults()
	assert.Equal(t, "chat", req.Category)
	assert.Equal(t, "v", req.Metadata["k"])
}

func TestNotificationRequest_MissingFields(t *testing.T) {
	assert.Empty(t, domain.NotificationRequest{RecipientID: "u", Title: "t", Body: "b"}.MissingFields())
	assert.Equal(t, []string{"userId", "title", "message"}, domain.NotificationRequest{}.MissingFields())
	assert.Equal(t, []string{"title"}, domain.NotificationRequest{RecipientID: "u", Body: "b"}.MissingFields())
}

func TestErrors_Messages(t *testing.T) {
	missing := &domain.MissingFieldsError{Fields: []string{"userId", "message"}}
	assert.Equal(t, "missing required fields: userId, message", missing.Error())

	perr := &domain.ProviderError{StatusCode: 400, Errors: []string{"a", "b"}}
	assert.Equal(t, "provider rejected notification: a, b", perr.Error())

	perr = &domain.ProviderError{StatusCode: 503}
	assert.Equal(t, "provider rejected notification: status 503", perr.Error())
}
