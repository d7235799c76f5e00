//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package cos fetches cos:// objects from Tencent Cloud Object Storage.
// The URI container is the bucket name including the app id,
// e.g. cos://examplebucket-1250000000/uploads/cat.png.
package cos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"trpc.group/trpc-go/trpc-image-agent-go/storage/object"
)

// Scheme is the URI scheme served by this package.
const Scheme = "cos"

const defaultTimeout = 60 * time.Second

// Option configures the fetcher.
type Option func(*options)

type options struct {
	region    string
	secretID  string
	secretKey string
	timeout   time.Duration
	transport http.RoundTripper
	bucketURL func(bucket string) (*url.URL, error)
}

// WithRegion sets the COS region used to build bucket URLs, e.g. ap-guangzhou.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithSecretID sets the secret id. Defaults to COS_SECRETID.
func WithSecretID(id string) Option {
	return func(o *options) {
		o.secretID = id
	}
}

// WithSecretKey sets the secret key. Defaults to COS_SECRETKEY.
func WithSecretKey(key string) Option {
	return func(o *options) {
		o.secretKey = key
	}
}

// WithTimeout sets the HTTP timeout of each fetch.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithTransport sets the base transport wrapped by COS request signing.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithBucketURL overrides how a bucket name maps to its endpoint.
func WithBucketURL(fn func(bucket string) (*url.URL, error)) Option {
	return func(o *options) {
		o.bucketURL = fn
	}
}

// Fetcher reads objects from COS, keeping one client per bucket.
type Fetcher struct {
	opts    options
	mu      sync.Mutex
	clients map[string]*cos.Client
}

var _ object.Fetcher = (*Fetcher)(nil)

// New creates a COS fetcher.
func New(opts ...Option) *Fetcher {
	o := options{
		secretID:  os.Getenv("COS_SECRETID"),
		secretKey: os.Getenv("COS_SECRETKEY"),
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bucketURL == nil {
		region := o.region
		o.bucketURL = func(bucket string) (*url.URL, error) {
			return cos.NewBucketURL(bucket, region, true)
		}
	}
	return &Fetcher{opts: o, clients: make(map[string]*cos.Client)}
}

// Fetch implements object.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, bucket, key string) (*object.Object, error) {
	client, err := f.client(bucket)
	if err != nil {
		return nil, err
	}
	resp, err := client.Object.Get(ctx, key, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: cos://%s/%s", object.ErrObjectNotFound, bucket, key)
		}
		return nil, fmt.Errorf("cos: get cos://%s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cos: read cos://%s/%s: %w", bucket, key, err)
	}
	return &object.Object{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

func (f *Fetcher) client(bucket string) (*cos.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[bucket]; ok {
		return c, nil
	}
	u, err := f.opts.bucketURL(bucket)
	if err != nil {
		return nil, fmt.Errorf("cos: bucket url for %q: %w", bucket, err)
	}
	c := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Timeout: f.opts.timeout,
		Transport: &cos.AuthorizationTransport{
			SecretID:  f.opts.secretID,
			SecretKey: f.opts.secretKey,
			Transport: f.opts.transport,
		},
	})
	f.clients[bucket] = c
	return c, nil
}
