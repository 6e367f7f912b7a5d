package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
	"github.com/menengai/fansite-api/upload"
)

// staleSessionCutoff is how long an upload session may sit neither completed
// nor aborted before the reaper releases it at the gateway.
const staleSessionCutoff = 24 * time.Hour

// liveSweepCutoff is how long past its scheduled start a stream may stay LIVE
// before the sweep marks it ENDED.
const liveSweepCutoff = 12 * time.Hour

// Scheduler handles periodic background jobs: reaping stale upload sessions
// and sweeping stuck livestreams.
type Scheduler struct {
	cron       *cron.Cron
	Records    databases.UploadRecordDatabase
	Streams    databases.LivestreamDatabase
	Gateway    upload.Gateway
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	records databases.UploadRecordDatabase,
	streams databases.LivestreamDatabase,
	gateway upload.Gateway,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Records:    records,
		Streams:    streams,
		Gateway:    gateway,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Release abandoned upload sessions hourly
	_, err := s.cron.AddFunc("0 * * * *", s.reapStaleUploads)
	if err != nil {
		zap.S().Errorw("failed to register upload reaper job", "error", err)
	}

	// Sweep stuck LIVE streams to ENDED every 15 minutes
	_, err = s.cron.AddFunc("*/15 * * * *", s.sweepLivestreams)
	if err != nil {
		zap.S().Errorw("failed to register livestream sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Infow("scheduler started", "instanceId", s.instanceID)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// reapStaleUploads aborts gateway sessions for upload records that were
// started long ago but never completed or aborted. Each abandoned session
// holds storage for its parts until it is released.
func (s *Scheduler) reapStaleUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-staleSessionCutoff))
	records, err := s.Records.Find(ctx, bson.M{
		"completed": false,
		"aborted":   false,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to list stale upload records", "error", err)
		return
	}

	for _, record := range records {
		if err := s.Gateway.Abort(ctx, record.UploadID, record.Key); err != nil {
			zap.S().Errorw("failed to abort stale session",
				"uploadId", record.UploadID,
				"error", err)
			continue
		}
		now := primitive.NewDateTimeFromTime(time.Now())
		if _, err := s.Records.UpdateOne(ctx,
			bson.M{"_id": record.ID},
			bson.M{"$set": bson.M{"aborted": true, "updatedAt": now}}); err != nil {
			zap.S().Errorw("failed to mark stale record aborted",
				"uploadId", record.UploadID,
				"error", err)
			continue
		}
		zap.S().Infow("reaped stale upload session",
			"uploadId", record.UploadID,
			"key", record.Key,
		)
	}
}

// sweepLivestreams marks streams ENDED when they have been LIVE far past
// their scheduled start, covering broadcasts that ended without the admin
// flipping the status.
func (s *Scheduler) sweepLivestreams() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	cutoff := primitive.NewDateTimeFromTime(now.Add(-liveSweepCutoff))
	streams, err := s.Streams.Find(ctx, bson.M{
		"status":      models.LivestreamStatusLive,
		"scheduledAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to list stuck livestreams", "error", err)
		return
	}

	for _, stream := range streams {
		ended := primitive.NewDateTimeFromTime(now)
		if _, err := s.Streams.UpdateOne(ctx,
			bson.M{"_id": stream.ID, "status": models.LivestreamStatusLive},
			bson.M{"$set": bson.M{
				"status":    models.LivestreamStatusEnded,
				"endedAt":   ended,
				"updatedAt": ended,
			}}); err != nil {
			zap.S().Errorw("failed to end stuck livestream",
				"livestreamId", stream.ID.Hex(),
				"error", err)
			continue
		}
		zap.S().Infow("swept stuck livestream to ended", "livestreamId", stream.ID.Hex())
	}
}
