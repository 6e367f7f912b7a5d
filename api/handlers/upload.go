package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
	"github.com/menengai/fansite-api/upload"
)

// Upload exposes the multipart upload protocol to the admin frontend. The
// handler is a thin proxy over the storage gateway; the gateway's own
// verdicts, including its HTTP status codes, pass through to the caller.
type Upload struct {
	Gateway  upload.Gateway
	Ingester upload.Ingester
	Records  databases.UploadRecordDatabase
	Streams  databases.LivestreamDatabase
	Config   config.Config
}

type uploadActionRequest struct {
	Action       string                  `json:"action"`
	Filename     string                  `json:"filename"`
	UploadID     string                  `json:"uploadId"`
	Key          string                  `json:"key"`
	Parts        []upload.PartDescriptor `json:"parts"`
	LivestreamID string                  `json:"livestreamId"`
}

// gatewayStatus maps a gateway failure to the status the caller should see.
// Gateway verdicts keep their own status; anything else is a bad gateway.
func gatewayStatus(err error) int {
	var gwErr *upload.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}
	return http.StatusBadGateway
}

// UploadActionHandler multiplexes the JSON control calls of the upload
// protocol: start, complete and abort.
func (u Upload) UploadActionHandler(w http.ResponseWriter, r *http.Request) {
	var req uploadActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	switch req.Action {
	case "start":
		u.handleStart(w, r, req)
	case "complete":
		u.handleComplete(w, r, req)
	case "abort":
		u.handleAbort(w, r, req)
	default:
		config.ErrorStatus("unknown action", http.StatusBadRequest, w, errors.New(req.Action))
	}
}

func (u Upload) handleStart(w http.ResponseWriter, r *http.Request, req uploadActionRequest) {
	if req.Filename == "" {
		config.ErrorStatus("filename is required", http.StatusBadRequest, w, nil)
		return
	}

	session, err := u.Gateway.Start(r.Context(), req.Filename)
	if err != nil {
		config.ErrorStatus("failed to start upload", gatewayStatus(err), w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	record := models.UploadRecord{
		ID:          primitive.NewObjectID(),
		UploadID:    session.UploadID,
		Key:         session.Key,
		Filename:    req.Filename,
		IngestState: models.IngestStatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := u.Records.InsertOne(r.Context(), record); err != nil {
		// the session is open but untracked; release it rather than leak it
		if abortErr := u.Gateway.Abort(r.Context(), session.UploadID, session.Key); abortErr != nil {
			zap.S().Errorw("failed to abort untracked session", "uploadId", session.UploadID, "error", abortErr)
		}
		config.ErrorStatus("failed to record upload", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("upload session started",
		"uploadId", session.UploadID,
		"key", session.Key,
		"filename", req.Filename,
	)

	b, _ := json.Marshal(session)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (u Upload) handleComplete(w http.ResponseWriter, r *http.Request, req uploadActionRequest) {
	if req.UploadID == "" || req.Key == "" || len(req.Parts) == 0 {
		config.ErrorStatus("uploadId, key and parts are required", http.StatusBadRequest, w, nil)
		return
	}

	finalKey, err := u.Gateway.Complete(r.Context(), req.UploadID, req.Key, req.Parts)
	if err != nil {
		config.ErrorStatus("failed to complete upload", gatewayStatus(err), w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := u.Records.UpdateOne(r.Context(),
		bson.M{"uploadId": req.UploadID},
		bson.M{"$set": bson.M{"completed": true, "key": finalKey, "updatedAt": now}}); err != nil {
		zap.S().Errorw("failed to mark upload record completed", "uploadId", req.UploadID, "error", err)
	}

	resp := map[string]interface{}{"completed": true, "key": finalKey}

	// Completion and ingestion are separate phases: the object is durable at
	// this point, so an ingestion failure is reported but leaves the upload
	// completed and retryable.
	result, err := u.ingest(r, finalKey, req.LivestreamID)
	if err != nil {
		zap.S().Errorw("ingestion failed after completion", "key", finalKey, "error", err)
		resp["ingested"] = false
		resp["ingestError"] = err.Error()
	} else {
		resp["ingested"] = true
		resp["videoId"] = result.VideoID
		resp["thumbnailUrl"] = result.ThumbnailURL
	}

	b, _ := json.Marshal(resp)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (u Upload) handleAbort(w http.ResponseWriter, r *http.Request, req uploadActionRequest) {
	if req.UploadID == "" || req.Key == "" {
		config.ErrorStatus("uploadId and key are required", http.StatusBadRequest, w, nil)
		return
	}

	if err := u.Gateway.Abort(r.Context(), req.UploadID, req.Key); err != nil {
		config.ErrorStatus("failed to abort upload", gatewayStatus(err), w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := u.Records.UpdateOne(r.Context(),
		bson.M{"uploadId": req.UploadID},
		bson.M{"$set": bson.M{"aborted": true, "updatedAt": now}}); err != nil {
		zap.S().Errorw("failed to mark upload record aborted", "uploadId", req.UploadID, "error", err)
	}

	zap.S().Infow("upload session aborted", "uploadId", req.UploadID)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"aborted": true}`))
}

// UploadPartHandler streams one binary part body through to the gateway
func (u Upload) UploadPartHandler(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("uploadId")
	key := r.URL.Query().Get("key")
	partNumber, err := strconv.Atoi(r.URL.Query().Get("partNumber"))
	if uploadID == "" || key == "" || err != nil || partNumber < 1 {
		config.ErrorStatus("uploadId, key and partNumber are required", http.StatusBadRequest, w, err)
		return
	}

	pd, err := u.Gateway.UploadPart(r.Context(), uploadID, key, partNumber, r.ContentLength, r.Body)
	if err != nil {
		config.ErrorStatus("failed to upload part", gatewayStatus(err), w, err)
		return
	}

	zap.S().Debugf("part %d uploaded for %s", partNumber, uploadID)

	b, _ := json.Marshal(pd)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type retryIngestRequest struct {
	Key          string `json:"key"`
	LivestreamID string `json:"livestreamId"`
}

// RetryIngestHandler retries the video-platform handoff for a finalized
// object key whose earlier ingestion failed.
func (u Upload) RetryIngestHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req retryIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Key == "" {
		config.ErrorStatus("key is required", http.StatusBadRequest, w, nil)
		return
	}

	record, err := u.Records.FindOne(ctx, bson.M{"key": req.Key})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("no upload record for key", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to find upload record", http.StatusInternalServerError, w, err)
		return
	}
	if !record.Completed || record.Aborted {
		config.ErrorStatus("upload is not completed", http.StatusConflict, w, nil)
		return
	}
	if record.IngestState == models.IngestStateIngested {
		b, _ := json.Marshal(map[string]interface{}{
			"ingested":     true,
			"videoId":      record.VideoID,
			"thumbnailUrl": record.ThumbnailURL,
		})
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	result, err := u.ingest(r, req.Key, req.LivestreamID)
	if err != nil {
		config.ErrorStatus("ingestion failed", http.StatusBadGateway, w, err)
		return
	}

	b, _ := json.Marshal(map[string]interface{}{
		"ingested":     true,
		"videoId":      result.VideoID,
		"thumbnailUrl": result.ThumbnailURL,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ingest hands a finalized object to the video platform and records the
// outcome on the upload record, optionally attaching the video to a
// livestream.
func (u Upload) ingest(r *http.Request, key, livestreamID string) (upload.IngestResult, error) {
	now := primitive.NewDateTimeFromTime(time.Now())

	if u.Ingester == nil {
		err := &upload.IngestionError{Key: key, Err: errors.New("ingester not configured")}
		u.markIngest(r, key, models.IngestStateFailed, upload.IngestResult{}, now)
		return upload.IngestResult{}, err
	}

	result, err := u.Ingester.Ingest(r.Context(), key)
	if err != nil {
		u.markIngest(r, key, models.IngestStateFailed, upload.IngestResult{}, now)
		return upload.IngestResult{}, err
	}

	u.markIngest(r, key, models.IngestStateIngested, result, now)

	if livestreamID != "" {
		lID, err := primitive.ObjectIDFromHex(livestreamID)
		if err != nil {
			zap.S().Warnw("invalid livestreamId on ingest, skipping attach", "livestreamId", livestreamID)
			return result, nil
		}
		if _, err := u.Streams.UpdateOne(r.Context(),
			bson.M{"_id": lID},
			bson.M{"$set": bson.M{
				"videoId":      result.VideoID,
				"thumbnailUrl": result.ThumbnailURL,
				"updatedAt":    now,
			}}); err != nil {
			zap.S().Errorw("failed to attach video to livestream", "livestreamId", livestreamID, "error", err)
		}
	}
	return result, nil
}

func (u Upload) markIngest(r *http.Request, key string, state models.IngestState, result upload.IngestResult, now primitive.DateTime) {
	set := bson.M{"ingestState": state, "updatedAt": now}
	if result.VideoID != "" {
		set["videoId"] = result.VideoID
		set["thumbnailUrl"] = result.ThumbnailURL
	}
	if _, err := u.Records.UpdateOne(r.Context(), bson.M{"key": key}, bson.M{"$set": set}); err != nil {
		zap.S().Errorw("failed to update upload record ingest state", "key", key, "error", err)
	}
}
