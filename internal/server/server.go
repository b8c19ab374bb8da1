package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/config"
	"github.com/Nhu-Hau/study-rooms/internal/modules/auth"
	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/media"
	"github.com/Nhu-Hau/study-rooms/internal/modules/notify"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"
	roomscommands "github.com/Nhu-Hau/study-rooms/internal/modules/rooms/commands"
	roomsdomain "github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"
	roomsqueries "github.com/Nhu-Hau/study-rooms/internal/modules/rooms/queries"
	"github.com/Nhu-Hau/study-rooms/internal/modules/storage"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	_ "github.com/lib/pq"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for the application.
type HTTPServer struct {
	server    *http.Server
	publisher notify.Publisher
}

func NewHTTPServer(config config.Config) (Server, error) {
	baseCtx := context.Background()

	core.SetLogger(config.Logger)

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		return nil, err
	}

	var publisher notify.Publisher = notify.NopPublisher{}
	if config.NatsURL != "" {
		natsPublisher, err := notify.NewNatsPublisher(config.NatsURL)
		if err != nil {
			return nil, err
		}
		publisher = natsPublisher
	}

	mediaClient := media.NewClient(config.Media.Host, config.Media.APIKey, config.Media.APISecret)
	objectStore := storage.NewClient(config.Storage.Endpoint, config.Storage.Bucket, config.Storage.Token)

	registry := rooms.NewRegistry(db)
	ledger := rooms.NewLedger(db)
	tracker := rooms.NewTracker(db)
	reaper := rooms.NewReaper(db, mediaClient, objectStore, config.Logger)

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// handler registration

	issueTokenHandler := roomscommands.NewIssueJoinTokenCommandHandler(
		registry,
		ledger,
		mediaClient,
		config.Media.WSEndpoint,
		config.Media.APIKey,
		config.Media.APISecret,
	)
	err = mediator.RegisterRequestHandler[roomscommands.IssueJoinTokenCommand, roomscommands.IssueJoinTokenResponse](
		issueTokenHandler,
	)
	if err != nil {
		return nil, err
	}

	banUserHandler := roomscommands.NewBanUserCommandHandler(registry, ledger, mediaClient, publisher, config.Logger)
	err = mediator.RegisterRequestHandler[roomscommands.BanUserCommand, core.Unit](banUserHandler)
	if err != nil {
		return nil, err
	}

	unbanUserHandler := roomscommands.NewUnbanUserCommandHandler(registry, ledger)
	err = mediator.RegisterRequestHandler[roomscommands.UnbanUserCommand, core.Unit](unbanUserHandler)
	if err != nil {
		return nil, err
	}

	reassignHostHandler := roomscommands.NewReassignHostCommandHandler(registry)
	err = mediator.RegisterRequestHandler[roomscommands.ReassignHostCommand, core.Unit](reassignHostHandler)
	if err != nil {
		return nil, err
	}

	deleteRoomHandler := roomscommands.NewDeleteRoomCommandHandler(registry, reaper)
	err = mediator.RegisterRequestHandler[roomscommands.DeleteRoomCommand, core.Unit](deleteRoomHandler)
	if err != nil {
		return nil, err
	}

	webhookHandler := roomscommands.NewProcessMediaWebhookCommandHandler(
		tracker,
		config.Media.APIKey,
		config.Media.APISecret,
	)
	err = mediator.RegisterRequestHandler[roomscommands.ProcessMediaWebhookCommand, roomscommands.WebhookAck](
		webhookHandler,
	)
	if err != nil {
		return nil, err
	}

	uploadDocumentHandler := roomscommands.NewUploadDocumentCommandHandler(db, registry, objectStore)
	err = mediator.RegisterRequestHandler[roomscommands.UploadDocumentCommand, roomsdomain.Document](
		uploadDocumentHandler,
	)
	if err != nil {
		return nil, err
	}

	deleteDocumentHandler := roomscommands.NewDeleteDocumentCommandHandler(db, objectStore, config.Logger)
	err = mediator.RegisterRequestHandler[roomscommands.DeleteDocumentCommand, core.Unit](deleteDocumentHandler)
	if err != nil {
		return nil, err
	}

	postCommentHandler := roomscommands.NewPostCommentCommandHandler(db, registry)
	err = mediator.RegisterRequestHandler[roomscommands.PostCommentCommand, roomsdomain.Comment](postCommentHandler)
	if err != nil {
		return nil, err
	}

	closeSessionHandler := roomscommands.NewCloseSessionCommandHandler(registry, tracker)
	err = mediator.RegisterRequestHandler[roomscommands.CloseSessionCommand, core.Unit](closeSessionHandler)
	if err != nil {
		return nil, err
	}

	getRoomHandler := roomsqueries.NewGetRoomQueryHandler(db)
	err = mediator.RegisterRequestHandler[roomsqueries.GetRoomQuery, roomsqueries.RoomDetails](getRoomHandler)
	if err != nil {
		return nil, err
	}

	listRoomsHandler := roomsqueries.NewListRoomsQueryHandler(db)
	err = mediator.RegisterRequestHandler[roomsqueries.ListRoomsQuery, []roomsqueries.RoomSummary](listRoomsHandler)
	if err != nil {
		return nil, err
	}

	listSessionsHandler := roomsqueries.NewListSessionsQueryHandler(db)
	err = mediator.RegisterRequestHandler[roomsqueries.ListSessionsQuery, []roomsqueries.SessionWithParticipants](
		listSessionsHandler,
	)
	if err != nil {
		return nil, err
	}

	listDocumentsHandler := roomsqueries.NewListDocumentsQueryHandler(db)
	err = mediator.RegisterRequestHandler[roomsqueries.ListDocumentsQuery, []roomsdomain.Document](
		listDocumentsHandler,
	)
	if err != nil {
		return nil, err
	}

	listCommentsHandler := roomsqueries.NewListCommentsQueryHandler(db)
	err = mediator.RegisterRequestHandler[roomsqueries.ListCommentsQuery, []roomsdomain.Comment](listCommentsHandler)
	if err != nil {
		return nil, err
	}

	listBansHandler := roomsqueries.NewListBansQueryHandler(ledger)
	err = mediator.RegisterRequestHandler[roomsqueries.ListBansQuery, []roomsdomain.Ban](listBansHandler)
	if err != nil {
		return nil, err
	}

	// http

	r := chi.NewRouter()
	r.Use(baseContextMiddleware(baseCtx))
	r.Use(core.CorrelationIDHTTPMiddleware)

	r.Post("/webhooks/media", roomscommands.HandleMediaWebhook)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticationMiddleware(config.AuthSecret))

		r.Get("/rooms", roomsqueries.HandleListRooms)
		r.Get("/rooms/{name}", roomsqueries.HandleGetRoom)
		r.Get("/rooms/{name}/sessions", roomsqueries.HandleListSessions)
		r.Post("/rooms/{name}/sessions/close", roomscommands.HandleCloseSession)
		r.Delete("/rooms/{name}", roomscommands.HandleDeleteRoom)

		r.Post("/rooms/{name}/join-token", roomscommands.HandleIssueJoinToken)
		r.Put("/rooms/{name}/host", roomscommands.HandleReassignHost)

		r.Post("/rooms/{name}/bans", roomscommands.HandleBanUser)
		r.Get("/rooms/{name}/bans", roomsqueries.HandleListBans)
		r.Delete("/rooms/{name}/bans/{userId}", roomscommands.HandleUnbanUser)

		r.Post("/rooms/{name}/documents", roomscommands.HandleUploadDocument)
		r.Get("/rooms/{name}/documents", roomsqueries.HandleListDocuments)
		r.Delete("/rooms/{name}/documents/{id}", roomscommands.HandleDeleteDocument)

		r.Post("/rooms/{name}/comments", roomscommands.HandlePostComment)
		r.Get("/rooms/{name}/comments", roomsqueries.HandleListComments)
	})

	server := http.Server{
		Addr:    net.JoinHostPort("", fmt.Sprintf("%d", config.Port)),
		Handler: r,
	}

	return &HTTPServer{server: &server, publisher: publisher}, nil
}

func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop() error {
	if closer, ok := s.publisher.(interface{ Close() }); ok {
		closer.Close()
	}

	return s.server.Close()
}

func baseContextMiddleware(baseCtx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestCtx := baseCtx

			if v, ok := ctx.Value(http.ServerContextKey).(*http.Server); ok {
				requestCtx = context.WithValue(requestCtx, http.ServerContextKey, v)
			}

			if v, ok := ctx.Value(http.LocalAddrContextKey).(net.Addr); ok {
				requestCtx = context.WithValue(requestCtx, http.LocalAddrContextKey, v)
			}

			next.ServeHTTP(w, r.WithContext(requestCtx))
		})
	}
}
