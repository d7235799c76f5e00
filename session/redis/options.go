//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package redis

import "github.com/redis/go-redis/v9"

const defaultSessionEventLimit = 100

type serviceOpts struct {
	sessionEventLimit int
	client            redis.UniversalClient
	url               string
}

// ServiceOpt is the option for the redis session service.
type ServiceOpt func(*serviceOpts)

// WithSessionEventLimit sets the limit of events kept per session.
// Older events are dropped first; a non-positive limit keeps every event.
func WithSessionEventLimit(limit int) ServiceOpt {
	return func(opts *serviceOpts) {
		opts.sessionEventLimit = limit
	}
}

// WithRedisClient sets the redis client. The service does not close it.
func WithRedisClient(client redis.UniversalClient) ServiceOpt {
	return func(opts *serviceOpts) {
		opts.client = client
	}
}

// WithRedisClientURL creates the redis client from a URL of the form
// redis://<user>:<password>@<host>:<port>/<db>. See redis.ParseURL for options.
func WithRedisClientURL(url string) ServiceOpt {
	return func(opts *serviceOpts) {
		opts.url = url
	}
}
