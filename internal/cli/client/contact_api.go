package client

import (
	"context"
	"net/http"
)

// ContactMessage is a contact form submission
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactReceipt acknowledges a submission
type ContactReceipt struct {
	Success   string `json:"success"`
	Reference string `json:"reference"`
}

// ContactAPI covers the contact form
type ContactAPI struct {
	c *Client
}

// Contact returns the contact endpoint
func (c *Client) Contact() *ContactAPI {
	return &ContactAPI{c: c}
}

// Send submits a contact message. The endpoint is public but the bearer
// token is still attached when present.
func (a *ContactAPI) Send(ctx context.Context, msg ContactMessage) Result[ContactReceipt] {
	return Do[ContactReceipt](ctx, a.c, http.MethodPost, "contact/", msg)
}
