package main

import (
	"code_judge_cli/internal/common/security"
	"code_judge_cli/internal/devserver"
	"code_judge_cli/internal/devserver/store"
	"code_judge_cli/internal/platform/config"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	config.Load()
	fmt.Println("Configuration loaded.")

	security.InitJWT()
	fmt.Println("JWT initialized.")

	store.Connect(config.AppConfig.DBPath)
	defer store.Close()

	users := store.NewUserStore(store.DB)
	challenges := store.NewChallengeStore(store.DB)
	submissions := store.NewSubmissionStore(store.DB)

	router := devserver.NewRouter(users, challenges, submissions)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Println("Devserver listening on port " + config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	fmt.Println("Devserver stopped.")
}
