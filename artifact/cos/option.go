//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package cos

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

// Environment variables holding the default COS credentials.
const (
	EnvSecretID  = "COS_SECRETID"
	EnvSecretKey = "COS_SECRETKEY"
)

// ErrInvalidBucketURL is returned for a bucket URL that is not an absolute http(s) URL.
var ErrInvalidBucketURL = errors.New("cos: invalid bucket url")

// Option configures the COS artifact store.
type Option func(*options)

type options struct {
	client     client
	httpClient *http.Client
	timeout    time.Duration
	secretID   string
	secretKey  string
	keyPrefix  string
}

// WithClient uses a pre-configured COS client. The bucket URL, credentials,
// timeout and HTTP client options are then ignored.
func WithClient(c *cos.Client) Option {
	return func(o *options) {
		o.client = newCosClient(c)
	}
}

// WithHTTPClient sends requests through a copy of c. The copy keeps the
// transport of c, so c is responsible for request signing.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout bounds every COS request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithSecretID sets the secret ID, overriding COS_SECRETID.
func WithSecretID(secretID string) Option {
	return func(o *options) {
		o.secretID = secretID
	}
}

// WithSecretKey sets the secret key, overriding COS_SECRETKEY.
func WithSecretKey(secretKey string) Option {
	return func(o *options) {
		o.secretKey = secretKey
	}
}

// WithKeyPrefix stores every artifact below prefix, so several agents can
// share one bucket. Leading and trailing slashes are ignored.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

func newOptions(opts []Option) *options {
	o := &options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.secretID == "" {
		o.secretID = os.Getenv(EnvSecretID)
	}
	if o.secretKey == "" {
		o.secretKey = os.Getenv(EnvSecretKey)
	}
	return o
}

// prefix returns the normalized key prefix, "" or ending in "/".
func (o *options) prefix() string {
	p := strings.Trim(o.keyPrefix, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// newClient builds the COS client for bucketURL, e.g.
// https://examplebucket-1250000000.cos.ap-guangzhou.myqcloud.com.
func (o *options) newClient(bucketURL string) (client, error) {
	if o.client != nil {
		return o.client, nil
	}
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidBucketURL, bucketURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q needs an http or https scheme and a host", ErrInvalidBucketURL, bucketURL)
	}

	var httpClient *http.Client
	if o.httpClient != nil {
		c := *o.httpClient
		httpClient = &c
	} else {
		httpClient = &http.Client{Transport: &cos.AuthorizationTransport{
			SecretID:  o.secretID,
			SecretKey: o.secretKey,
		}}
	}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}
	return newCosClient(cos.NewClient(&cos.BaseURL{BucketURL: u}, httpClient)), nil
}
