package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"lapakku/internal/adapter/api"
	"lapakku/internal/adapter/api/handler"
	apimiddleware "lapakku/internal/adapter/api/middleware"
	"lapakku/internal/adapter/api/router"
	"lapakku/internal/adapter/repository"
	"lapakku/internal/domain/service"
	"lapakku/internal/infrastructure/firebase"
	"lapakku/internal/infrastructure/ws"
	"lapakku/internal/usecase"
	"lapakku/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from the environment takes precedence; the file path
	// fallback is for local development.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}
	authClient := firebase.NewAuthClient(fbAuth)

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	var notifier service.Notifier
	if messagingClient, err := firebaseApp.Messaging(ctx); err != nil {
		log.Printf("FCM unavailable, staff push notifications disabled: %v", err)
	} else {
		notifier = firebase.NewFCMNotifier(messagingClient, cfg.StaffTopic)
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	productRepo := repository.NewFirestoreProductRepository(firestoreClient)
	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)

	hub := ws.NewHub()

	supportUseCase := usecase.NewSupportUseCase(conversationRepo, userRepo, authClient, hub, notifier)
	userUseCase := usecase.NewUserUseCase(userRepo, authClient)
	productUseCase := usecase.NewProductUseCase(productRepo)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(apimiddleware.NewIPRateLimiter(10, 20).Middleware())

	e.Validator = api.NewValidator()

	router.Setup(e, router.Handlers{
		Health:    handler.NewHealthHandler(authClient),
		User:      handler.NewUserHandler(userUseCase),
		Product:   handler.NewProductHandler(productUseCase),
		Support:   handler.NewSupportHandler(supportUseCase),
		WebSocket: handler.NewWebSocketHandler(hub, supportUseCase, cfg.SendBufferSize),
	}, router.Middlewares{
		Auth: apimiddleware.NewAuthMiddleware(authClient),
		Role: apimiddleware.NewRoleMiddleware(userRepo),
	})

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
