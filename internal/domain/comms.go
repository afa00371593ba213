package domain

// CallRequest is the body for POST /v1/comms/call.
type CallRequest struct {
	LeadID string `json:"lead_id" validate:"required"`
	Phone  string `json:"phone" validate:"required,max=40"`
}

// SMSRequest is the body for POST /v1/comms/sms.
type SMSRequest struct {
	LeadID  string `json:"lead_id" validate:"required"`
	Phone   string `json:"phone" validate:"required,max=40"`
	Message string `json:"message" validate:"required,max=1600"`
}

// CommResponse acknowledges a queued communication. No telephony
// provider is wired up; the provider field makes the stub visible to
// callers instead of pretending a call went out.
type CommResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
}
