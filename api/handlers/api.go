package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/menengai/fansite-api/models"
	"github.com/stripe/stripe-go/v82"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/api/scheduler"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/upload"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	DB       databases.CollectionHelper
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewAdminDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	// request tracing feeds the admin metrics endpoints
	api.InitMetrics()
	databases.QueryObserver = api.RecordDBQueryFromContext

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	engine := &livefeed.Engine{
		Chat:         databases.NewChatMessageDatabase(a.dbHelper),
		Comments:     databases.NewCommentDatabase(a.dbHelper),
		Reactions:    databases.NewReactionDatabase(a.dbHelper),
		CommentLikes: databases.NewCommentLikeDatabase(a.dbHelper),
		Shares:       databases.NewShareDatabase(a.dbHelper),
		Streams:      databases.NewLivestreamDatabase(a.dbHelper),
	}

	ls := Livestream{DB: databases.NewLivestreamDatabase(a.dbHelper), Engine: engine}
	chat := Chat{Engine: engine}
	comment := Comment{Engine: engine}
	eng := Engagement{Engine: engine}
	live := NewLiveFeedSocket(engine)

	gateway := upload.NewHTTPGateway(a.Config.WorkerURL, a.Config.UploadAuthSecret, a.Config.GatewayTimeout)
	up := Upload{
		Gateway: gateway,
		Records: databases.NewUploadRecordDatabase(a.dbHelper),
		Streams: databases.NewLivestreamDatabase(a.dbHelper),
		Config:  a.Config,
	}
	if ingester, err := upload.NewCloudinaryIngester(a.Config.MediaPublicURL, "livestreams"); err != nil {
		zap.S().Warnw("cloudinary ingester unavailable, ingestion disabled", "error", err)
	} else {
		up.Ingester = ingester
	}

	p := Product{DB: databases.NewProductDatabase(a.dbHelper)}
	o := Order{DB: databases.NewOrderDatabase(a.dbHelper), PDB: databases.NewProductDatabase(a.dbHelper), BaseURL: a.Config.BaseURL}
	ab := Audiobook{DB: databases.NewAudiobookDatabase(a.dbHelper)}
	fc := FeaturedContent{DB: databases.NewFeaturedContentDatabase(a.dbHelper)}
	td := TourDate{DB: databases.NewTourDateDatabase(a.dbHelper)}
	nl := Newsletter{DB: databases.NewNewsletterDatabase(a.dbHelper)}
	contact := Contact{}
	admin := Admin{DB: databases.NewAdminDatabase(a.dbHelper)}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	// part bodies stream for much longer than a normal request
	uploadCreate := r.PathPrefix("/api/v1/stream").Subrouter()
	uploadCreate.Use(api.TimeoutMiddleware(a.Config.GatewayTimeout))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")

	apiCreate.Handle("/livestreams", http.HandlerFunc(ls.LivestreamsHandler)).Methods("GET")
	apiCreate.Handle("/livestreams", api.Middleware(http.HandlerFunc(ls.CreateLivestreamHandler))).Methods("POST")
	apiCreate.Handle("/livestreams/slug/{slug}", http.HandlerFunc(ls.LivestreamBySlugHandler)).Methods("GET")
	apiCreate.Handle("/livestreams/{livestream_id}", http.HandlerFunc(ls.LivestreamByIDHandler)).Methods("GET")
	apiCreate.Handle("/livestreams/{livestream_id}", api.Middleware(http.HandlerFunc(ls.UpdateLivestreamHandler))).Methods("PUT")
	apiCreate.Handle("/livestreams/{livestream_id}", api.Middleware(http.HandlerFunc(ls.DeleteLivestreamHandler))).Methods("DELETE")
	apiCreate.Handle("/livestreams/{livestream_id}/view", http.HandlerFunc(ls.IncrementViewsHandler)).Methods("POST")

	apiCreate.Handle("/livestreams/{livestream_id}/chat", http.HandlerFunc(chat.ChatHandler)).Methods("GET")
	apiCreate.Handle("/livestreams/{livestream_id}/chat", http.HandlerFunc(chat.PostChatHandler)).Methods("POST")
	apiCreate.Handle("/livestreams/{livestream_id}/chat/{message_id}", http.HandlerFunc(chat.DeleteChatHandler)).Methods("DELETE")
	apiCreate.Handle("/livestreams/{livestream_id}/chat/{message_id}/pin", api.Middleware(http.HandlerFunc(chat.PinChatHandler))).Methods("PUT")

	apiCreate.Handle("/livestreams/{livestream_id}/comments", http.HandlerFunc(comment.CommentsHandler)).Methods("GET")
	apiCreate.Handle("/livestreams/{livestream_id}/comments", http.HandlerFunc(comment.PostCommentHandler)).Methods("POST")
	apiCreate.Handle("/livestreams/{livestream_id}/comments/{comment_id}", http.HandlerFunc(comment.DeleteCommentHandler)).Methods("DELETE")
	apiCreate.Handle("/comments/{comment_id}/like", http.HandlerFunc(comment.ToggleCommentLikeHandler)).Methods("POST")

	apiCreate.Handle("/livestreams/{livestream_id}/reactions", http.HandlerFunc(eng.ToggleReactionHandler)).Methods("POST")
	apiCreate.Handle("/livestreams/{livestream_id}/reactions/count", http.HandlerFunc(eng.ReactionCountHandler)).Methods("GET")
	apiCreate.Handle("/livestreams/{livestream_id}/shares", http.HandlerFunc(eng.RecordShareHandler)).Methods("POST")
	apiCreate.Handle("/livestreams/{livestream_id}/engagement", http.HandlerFunc(eng.EngagementHandler)).Methods("GET")

	r.HandleFunc("/ws/livestreams/{livestream_id}", live.ServeWS)

	uploadCreate.Handle("/upload", api.Middleware(http.HandlerFunc(up.UploadActionHandler))).Methods("POST")
	uploadCreate.Handle("/upload", api.Middleware(http.HandlerFunc(up.UploadPartHandler))).Methods("PUT")
	uploadCreate.Handle("/ingest", api.Middleware(http.HandlerFunc(up.RetryIngestHandler))).Methods("POST")

	apiCreate.Handle("/products", http.HandlerFunc(p.ProductsHandler)).Methods("GET")
	apiCreate.Handle("/products", api.Middleware(http.HandlerFunc(p.CreateProductHandler))).Methods("POST")
	apiCreate.Handle("/products/{product_id}", http.HandlerFunc(p.ProductByIDHandler)).Methods("GET")
	apiCreate.Handle("/products/{product_id}", api.Middleware(http.HandlerFunc(p.UpdateProductHandler))).Methods("PUT")
	apiCreate.Handle("/products/{product_id}", api.Middleware(http.HandlerFunc(p.DeleteProductHandler))).Methods("DELETE")

	apiCreate.Handle("/orders", http.HandlerFunc(o.CreateOrderHandler)).Methods("POST")
	apiCreate.Handle("/orders", api.Middleware(http.HandlerFunc(o.OrdersHandler))).Methods("GET")
	apiCreate.Handle("/orders/{order_id}", api.Middleware(http.HandlerFunc(o.OrderByIDHandler))).Methods("GET")
	apiCreate.Handle("/success", http.HandlerFunc(o.handleSuccessRedirect)).Methods("GET")
	apiCreate.Handle("/cancel", http.HandlerFunc(o.handleCancelRedirect)).Methods("GET")

	apiCreate.Handle("/audiobooks", http.HandlerFunc(ab.AudiobooksHandler)).Methods("GET")
	apiCreate.Handle("/audiobooks", api.Middleware(http.HandlerFunc(ab.CreateAudiobookHandler))).Methods("POST")
	apiCreate.Handle("/audiobooks/{audiobook_id}", http.HandlerFunc(ab.AudiobookByIDHandler)).Methods("GET")
	apiCreate.Handle("/audiobooks/{audiobook_id}", api.Middleware(http.HandlerFunc(ab.UpdateAudiobookHandler))).Methods("PUT")
	apiCreate.Handle("/audiobooks/{audiobook_id}", api.Middleware(http.HandlerFunc(ab.DeleteAudiobookHandler))).Methods("DELETE")
	apiCreate.Handle("/audiobooks/{audiobook_id}/listen", http.HandlerFunc(ab.RecordListenHandler)).Methods("POST")

	apiCreate.Handle("/featured-content", http.HandlerFunc(fc.FeaturedContentHandler)).Methods("GET")
	apiCreate.Handle("/featured-content", api.Middleware(http.HandlerFunc(fc.CreateFeaturedContentHandler))).Methods("POST")
	apiCreate.Handle("/featured-content/tab/{tab_name}", http.HandlerFunc(fc.FeaturedContentByTabHandler)).Methods("GET")
	apiCreate.Handle("/featured-content/{featured_content_id}", api.Middleware(http.HandlerFunc(fc.UpdateFeaturedContentHandler))).Methods("PUT")
	apiCreate.Handle("/featured-content/{featured_content_id}", api.Middleware(http.HandlerFunc(fc.DeleteFeaturedContentHandler))).Methods("DELETE")

	apiCreate.Handle("/tour-dates", http.HandlerFunc(td.TourDatesHandler)).Methods("GET")
	apiCreate.Handle("/tour-dates", api.Middleware(http.HandlerFunc(td.CreateTourDateHandler))).Methods("POST")
	apiCreate.Handle("/tour-dates/{tour_date_id}", api.Middleware(http.HandlerFunc(td.UpdateTourDateHandler))).Methods("PUT")
	apiCreate.Handle("/tour-dates/{tour_date_id}", api.Middleware(http.HandlerFunc(td.DeleteTourDateHandler))).Methods("DELETE")

	apiCreate.Handle("/newsletter/subscribe", http.HandlerFunc(nl.SubscribeHandler)).Methods("POST")
	apiCreate.Handle("/newsletter/unsubscribe", http.HandlerFunc(nl.UnsubscribeHandler)).Methods("POST")

	apiCreate.Handle("/contact", http.HandlerFunc(contact.ContactHandler)).Methods("POST")

	metrics := Metrics{}
	apiCreate.Handle("/metrics/summary", api.Middleware(http.HandlerFunc(metrics.MetricsSummaryHandler))).Methods("GET")
	apiCreate.Handle("/metrics/routes", api.Middleware(http.HandlerFunc(metrics.RouteMetricsHandler))).Methods("GET")
	apiCreate.Handle("/metrics/slow-queries", api.Middleware(http.HandlerFunc(metrics.SlowQueriesHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("fansite-api has connected to the database")

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// StartScheduler wires and starts the background jobs. The returned
// scheduler should be stopped on shutdown.
func (a *App) StartScheduler() *scheduler.Scheduler {
	s := scheduler.NewScheduler(
		databases.NewUploadRecordDatabase(a.dbHelper),
		databases.NewLivestreamDatabase(a.dbHelper),
		upload.NewHTTPGateway(a.Config.WorkerURL, a.Config.UploadAuthSecret, a.Config.GatewayTimeout),
	)
	s.Start()
	return s
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
