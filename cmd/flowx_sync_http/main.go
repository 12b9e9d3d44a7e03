package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/nguyengiapalth/flowx-sync/bootstrap"
	"github.com/nguyengiapalth/flowx-sync/http/handler"
	"github.com/nguyengiapalth/flowx-sync/http/route"
	"github.com/nguyengiapalth/flowx-sync/repository"
	"github.com/nguyengiapalth/flowx-sync/service"
	"github.com/nguyengiapalth/flowx-sync/use_case"
	"github.com/nguyengiapalth/flowx-sync/worker"
)

func main() {
	app, err := bootstrap.NewApp()
	if err != nil {
		log.Fatalf("bootstrap: %s", err)
	}

	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	presenceStore := repository.NewPresence(app.RedisClient)
	contentRepository := repository.NewContent(app.CassandraSession)
	taskRepository := repository.NewTask(app.CassandraSession)
	uidGenerator := service.NewSonyflakeUID(app.SonyFlake)

	responder := worker.NewPresenceResponder(presenceStore, app.Transport)
	go responder.Run()

	tracker := service.NewPresenceTracker(app.Transport, "flowx-sync", service.PresenceTrackerConfig{
		HeartbeatInterval: time.Duration(app.Env.HeartbeatIntervalSeconds) * time.Second,
	})

	if err = tracker.Init(ctx); err != nil {
		log.Fatalf("init presence tracker: %s", err)
	}

	h := handler.NewHandler(
		handler.NewPresence(
			use_case.NewUpdatePresence(presenceStore, app.Transport),
			presenceStore,
			tracker,
		),
		handler.NewContent(
			contentRepository,
			use_case.NewCreateReply(contentRepository, contentRepository, uidGenerator),
		),
		handler.NewTask(taskRepository),
	)

	eng := route.Setup(h, app.Env.EnvironmentName)

	go func() {
		if err := eng.Run(fmt.Sprintf(":%d", app.Env.HTTPPortNumber)); err != nil {
			log.Printf("err: http server: %s", err)
			cancel()
		}
	}()

	log.Printf("Listening port %d", app.Env.HTTPPortNumber)

	<-ctx.Done()

	tracker.Cleanup()
	responder.Stop()
	<-responder.Done()
}
