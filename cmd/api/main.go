package main

import (
	"context"
	"log"

	"github.com/taha-association/links-backend/config"
	"github.com/taha-association/links-backend/internal/bootstrap"
	gaterepo "github.com/taha-association/links-backend/internal/gate/repository"
	gateservice "github.com/taha-association/links-backend/internal/gate/service"
	cronjob "github.com/taha-association/links-backend/internal/links/cron"
	"github.com/taha-association/links-backend/internal/links/repository"
	"github.com/taha-association/links-backend/internal/links/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis, bootstrap.RedisOptions{})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	local := repository.NewLocalRepository(rdb)

	var remote service.RemoteStore
	if cfg.Firebase.CredentialsPath != "" {
		fs, err := bootstrap.OpenFirestore(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatalf("firestore: %v", err)
		}
		defer fs.Close()
		remote = repository.NewRemoteRepository(fs, cfg.Firebase.Collection)
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, running local-only")
	}

	linkSvc := service.NewLinkService(remote, local)

	credRepo := gaterepo.NewCredentialRepository(rdb)
	gateSvc := gateservice.NewGateService(credRepo, gateservice.AssertionChallenger{}, gateservice.Options{
		ChallengeTimeout:  cfg.Gate.ChallengeTimeout,
		AttemptsPerMinute: cfg.Gate.AttemptsPerMinute,
	})

	if cfg.Backup.Enabled && remote != nil {
		sched := cronjob.NewScheduler(linkSvc, cfg.Backup.Schedule)
		sched.Start()
		defer sched.Stop()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   "links-backend",
		Version:       cfg.App.Version,
		Redis:         rdb,
		RemoteEnabled: remote != nil,
		Links:         linkSvc,
		Gate:          gateSvc,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}
