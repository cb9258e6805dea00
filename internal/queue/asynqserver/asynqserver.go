package asynqserver

import (
	"github.com/RandilG/Construction-Management/internal/cache"
	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/queue/processor"
	"github.com/RandilG/Construction-Management/internal/queue/task"
	"github.com/RandilG/Construction-Management/internal/worker"

	"github.com/hibiken/asynq"
)

func New(cfg config.Cache, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: 10,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.ProjectNotificationTaskName, processor.NewProjectNotificationProcessor(workers))
	queues := map[string]int{
		task.ProjectNotificationQueueName: 1,
	}
	return mux, queues
}
