package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
)

// Order exported for testing purposes
type Order struct {
	DB      databases.OrderDatabase
	PDB     databases.ProductDatabase
	BaseURL string
}

type createOrderRequest struct {
	Email string `json:"email"`
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int64  `json:"quantity"`
	} `json:"items"`
}

type createOrderResponse struct {
	OrderID     string `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// CreateOrderHandler creates a pending order from the requested product lines
// and opens a stripe checkout session for it
func (o Order) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Items) == 0 {
		config.ErrorStatus("email and at least one item are required", http.StatusBadRequest, w, nil)
		return
	}

	// Prices come from the products collection, never from the client
	var items []models.OrderItem
	var lineItems []*stripe.CheckoutSessionLineItemParams
	var total int64
	currency := "usd"
	for _, item := range req.Items {
		if item.Quantity < 1 {
			config.ErrorStatus("quantity must be at least 1", http.StatusBadRequest, w, nil)
			return
		}
		pID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			config.ErrorStatus("invalid productId", http.StatusBadRequest, w, err)
			return
		}
		product, err := o.PDB.FindOne(ctx, bson.M{"_id": pID})
		if err != nil {
			config.ErrorStatus("product not found", http.StatusNotFound, w, err)
			return
		}
		if !product.InStock {
			config.ErrorStatus("product is out of stock", http.StatusConflict, w, errors.New(product.Name))
			return
		}
		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Quantity:   item.Quantity,
			PriceCents: product.PriceCents,
		})
		total += product.PriceCents * item.Quantity
		currency = product.Currency
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(product.Currency),
				UnitAmount: stripe.Int64(product.PriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(product.Name),
				},
			},
		})
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	order := models.Order{
		ID:         primitive.NewObjectID(),
		Email:      req.Email,
		Items:      items,
		TotalCents: total,
		Currency:   currency,
		Status:     models.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(o.BaseURL + "/api/v1/success?orderId=" + order.ID.Hex()),
		CancelURL:     stripe.String(o.BaseURL + "/api/v1/cancel?orderId=" + order.ID.Hex()),
	}
	checkout, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}
	order.CheckoutSession = checkout.ID

	if _, err := o.DB.InsertOne(ctx, order); err != nil {
		config.ErrorStatus("failed to create order", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("order created",
		"orderId", order.ID.Hex(),
		"totalCents", order.TotalCents,
		"checkoutSession", checkout.ID,
	)

	b, err := json.Marshal(createOrderResponse{OrderID: order.ID.Hex(), CheckoutURL: checkout.URL})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// OrdersHandler returns all orders, newest first (admin)
func (o Order) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.IsValid() {
			config.ErrorStatus("invalid status filter", http.StatusBadRequest, w, nil)
			return
		}
		filter["status"] = s
	}

	dbResp, err := o.DB.Find(ctx, filter,
		&options.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		config.ErrorStatus("failed to get orders", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Order{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// OrderByIDHandler returns an order by ID (admin)
func (o Order) OrderByIDHandler(w http.ResponseWriter, r *http.Request) {
	oID, err := primitive.ObjectIDFromHex(mux.Vars(r)["order_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := o.DB.FindOne(r.Context(), bson.M{"_id": oID})
	if err != nil {
		config.ErrorStatus("failed to get order by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// handleSuccessRedirect marks the order paid when stripe redirects back
func (o Order) handleSuccessRedirect(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	oID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		config.ErrorStatus("invalid orderId", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := o.DB.UpdateOne(r.Context(),
		bson.M{"_id": oID, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{"status": models.OrderStatusPaid, "updatedAt": now}}); err != nil {
		config.ErrorStatus("failed to update order", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("order paid", "orderId", orderID)
	http.Redirect(w, r, "/merch/thanks", http.StatusSeeOther)
}

// handleCancelRedirect marks the order cancelled when the buyer backs out
func (o Order) handleCancelRedirect(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	oID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		config.ErrorStatus("invalid orderId", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := o.DB.UpdateOne(r.Context(),
		bson.M{"_id": oID, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{"status": models.OrderStatusCancelled, "updatedAt": now}}); err != nil {
		config.ErrorStatus("failed to update order", http.StatusInternalServerError, w, err)
		return
	}

	http.Redirect(w, r, "/merch", http.StatusSeeOther)
}
