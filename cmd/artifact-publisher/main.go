package main

import (
	"os"

	"artifact-hub-service/internal/adapters/primary/worker"
	"artifact-hub-service/internal/adapters/secondary/rabbitmq"
	"artifact-hub-service/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.RunWorker("artifact-publisher", rabbitmq.PublishRoute, func(d bootstrap.WorkerDeps) rabbitmq.Handler {
		return worker.NewPublicationWorker(d.Services.Artifact, d.Platforms, d.Archiver, d.Notifier, d.Paths)
	}))
}
