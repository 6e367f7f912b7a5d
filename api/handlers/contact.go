package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/menengai/fansite-api/config"
	templates "github.com/menengai/fansite-api/templates/html"
)

// Contact handles the contact form
type Contact struct{}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactHandler forwards a contact form submission to the site inbox
func (c Contact) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Message == "" {
		config.ErrorStatus("name and message are required", http.StatusBadRequest, w, nil)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		config.ErrorStatus("a valid email is required", http.StatusBadRequest, w, err)
		return
	}

	inbox := os.Getenv("CONTACT_INBOX")
	if inbox == "" {
		inbox = mailFromAddress
	}

	subject := "Contact form: " + req.Subject
	if req.Subject == "" {
		subject = "Contact form message"
	}
	plainText := fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message)
	htmlContent := templates.RenderGenericEmail(subject, plainText)

	if err := sendEmail(inbox, "", subject, htmlContent, plainText); err != nil {
		config.ErrorStatus("failed to send message", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("contact form submitted", "from", req.Email)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"sent": true}`))
}
