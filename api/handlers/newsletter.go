package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
	templates "github.com/menengai/fansite-api/templates/html"
)

const mailFromAddress = "no-reply@menengai.band"
const mailFromName = "Menengai"

// Newsletter exported for testing purposes
type Newsletter struct {
	DB databases.NewsletterDatabase
}

type newsletterRequest struct {
	Email string `json:"email"`
}

// sendEmail sends an email using SendGrid
func sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := sgmail.NewEmail(mailFromName, mailFromAddress)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send email", "error", err, "to", toEmail)
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", toEmail, "subject", subject)
	return nil
}

// SubscribeHandler adds an email to the newsletter list. The collection's
// unique email index makes the call idempotent; re-subscribing a previously
// unsubscribed address flips it back on.
func (n Newsletter) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		config.ErrorStatus("a valid email is required", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	subscriber := models.NewsletterSubscriber{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Subscribed:   true,
		SubscribedAt: now,
	}

	_, err := n.DB.InsertOne(ctx, subscriber)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("failed to subscribe", http.StatusInternalServerError, w, err)
			return
		}
		// already on the list: turn the subscription back on
		if _, err := n.DB.UpdateOne(ctx,
			bson.M{"email": email},
			bson.M{"$set": bson.M{"subscribed": true, "subscribedAt": now, "unsubscribedAt": nil}}); err != nil {
			config.ErrorStatus("failed to re-subscribe", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"subscribed": true}`))
		return
	}

	subject := "Welcome to the Menengai newsletter"
	plainText := "Thanks for signing up! You'll be the first to hear about new livestreams, tour dates and merch drops."
	htmlContent := templates.RenderGenericEmail(subject, plainText)
	go func() {
		if err := sendEmail(email, "", subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send welcome email", "error", err, "email", email)
		}
	}()

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"subscribed": true}`))
}

// UnsubscribeHandler turns a subscription off. Unknown addresses are a
// silent success so the unsubscribe link never errors.
func (n Newsletter) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		config.ErrorStatus("email is required", http.StatusBadRequest, w, nil)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := n.DB.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"subscribed": false, "unsubscribedAt": now}}); err != nil {
		config.ErrorStatus("failed to unsubscribe", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"subscribed": false}`))
}
