package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
)

// TourDate exported for testing purposes
type TourDate struct {
	DB databases.TourDateDatabase
}

// TourDatesHandler returns tour dates in chronological order. Past dates are
// included only with ?all=true.
func (t TourDate) TourDatesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if r.URL.Query().Get("all") != "true" {
		filter["date"] = bson.M{"$gte": primitive.NewDateTimeFromTime(time.Now())}
	}

	dbResp, err := t.DB.Find(ctx, filter,
		&options.FindOptions{Sort: bson.D{{Key: "date", Value: 1}}})
	if err != nil {
		config.ErrorStatus("failed to get tour dates", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.TourDate{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateTourDateHandler creates a new tour date
func (t TourDate) CreateTourDateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var td models.TourDate
	if err := json.NewDecoder(r.Body).Decode(&td); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if td.City == "" || td.Venue == "" {
		config.ErrorStatus("city and venue are required", http.StatusBadRequest, w, nil)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	td.ID = primitive.NewObjectID()
	td.CreatedAt = now
	td.UpdatedAt = now

	if _, err := t.DB.InsertOne(ctx, td); err != nil {
		config.ErrorStatus("failed to create tour date", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(td)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateTourDateHandler updates an existing tour date
func (t TourDate) UpdateTourDateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	tID, err := primitive.ObjectIDFromHex(mux.Vars(r)["tour_date_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		City      *string             `json:"city"`
		Venue     *string             `json:"venue"`
		Country   *string             `json:"country"`
		Date      *primitive.DateTime `json:"date"`
		TicketURL *string             `json:"ticketUrl"`
		SoldOut   *bool               `json:"soldOut"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	updateFields := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.City != nil {
		updateFields["city"] = *req.City
	}
	if req.Venue != nil {
		updateFields["venue"] = *req.Venue
	}
	if req.Country != nil {
		updateFields["country"] = *req.Country
	}
	if req.Date != nil {
		updateFields["date"] = *req.Date
	}
	if req.TicketURL != nil {
		updateFields["ticketUrl"] = *req.TicketURL
	}
	if req.SoldOut != nil {
		updateFields["soldOut"] = *req.SoldOut
	}

	res, err := t.DB.UpdateOne(ctx, bson.M{"_id": tID}, bson.M{"$set": updateFields})
	if err != nil {
		config.ErrorStatus("failed to update tour date", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("tour date not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"updated": true}`))
}

// DeleteTourDateHandler removes a tour date
func (t TourDate) DeleteTourDateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	tID, err := primitive.ObjectIDFromHex(mux.Vars(r)["tour_date_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := t.DB.DeleteOne(ctx, bson.M{"_id": tID})
	if err != nil {
		config.ErrorStatus("failed to delete tour date", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("tour date not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}
