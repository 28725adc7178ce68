// Seeds the project store with the built-in default links. Records whose
// name or URL already exists are skipped, so reruns are safe.
package main

import (
	"context"
	"log"
	"strings"

	"github.com/taha-association/links-backend/config"
	"github.com/taha-association/links-backend/internal/bootstrap"
	"github.com/taha-association/links-backend/internal/links/domain"
	"github.com/taha-association/links-backend/internal/links/repository"
	"github.com/taha-association/links-backend/internal/links/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

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
	}

	svc := service.NewLinkService(remote, local)

	list, err := svc.GetAll(ctx)
	if err != nil {
		log.Fatalf("list existing projects: %v", err)
	}

	added, skipped := 0, 0
	for _, np := range domain.DefaultProjects() {
		if exists(list.Projects, np) {
			log.Printf("skipped %q (already exists)", np.Name)
			skipped++
			continue
		}

		if _, _, err := svc.Add(ctx, np); err != nil {
			log.Printf("failed to add %q: %v", np.Name, err)
			continue
		}
		log.Printf("added %q", np.Name)
		added++
	}

	log.Printf("seeding finished: added=%d skipped=%d", added, skipped)
}

func exists(projects []domain.Project, np domain.NewProject) bool {
	for _, p := range projects {
		if strings.EqualFold(p.Name, np.Name) || p.URL == np.URL {
			return true
		}
	}
	return false
}
