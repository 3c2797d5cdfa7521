package service

import (
	"github.com/mitchsteamy/crome-lab-fmsp/internal/jobs"

	"github.com/hibiken/asynq"
)

// JobClient interface for scheduling background jobs
type JobClient interface {
	EnqueueExpireSweep(reason string) error
}

// AsynqJobClient implements JobClient using asynq
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(client *asynq.Client) *AsynqJobClient {
	return &AsynqJobClient{client: client}
}

func (c *AsynqJobClient) EnqueueExpireSweep(reason string) error {
	return jobs.EnqueueExpireSweep(c.client, reason)
}
