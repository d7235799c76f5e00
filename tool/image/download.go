//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package image

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
)

// DownloadInput is the input of download_file_from_url.
type DownloadInput struct {
	URL            string `json:"url" jsonschema:"description=The URL to download from"`
	OutputFilename string `json:"output_filename" jsonschema:"description=The name to save the artifact as"`
}

// DownloadOutput is the output of download_file_from_url.
type DownloadOutput struct {
	ArtifactName string `json:"artifact_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int    `json:"size,omitempty"`
	Version      int    `json:"version,omitempty"`
	Message      string `json:"message"`
}

// DownloadError reports a download answered with a non-2xx status.
type DownloadError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements error.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %s", e.URL, e.Status)
}

// DownloadFile fetches a URL and stores the body inline under the output filename.
func (s *ToolSet) DownloadFile(ctx context.Context, in DownloadInput) (DownloadOutput, error) {
	tc, err := agent.NewToolContext(ctx)
	if err != nil {
		return DownloadOutput{}, err
	}
	if in.URL == "" {
		return DownloadOutput{Message: "Error downloading file: a url is required."}, nil
	}
	if err := resolver.ValidateName(in.OutputFilename); err != nil {
		return DownloadOutput{Message: fmt.Sprintf("Error downloading file: %v", err)}, nil
	}

	data, contentType, err := s.fetch(ctx, in.URL)
	if err != nil {
		log.Errorf("%s: %v", ToolDownloadFile, err)
		return DownloadOutput{Message: fmt.Sprintf("Error downloading file: %v", err)}, nil
	}
	mimeType := downloadMimeType(in.OutputFilename, contentType, data)
	version, err := tc.SaveArtifact(in.OutputFilename, &artifact.Artifact{
		Data:     data,
		MimeType: mimeType,
		Name:     in.OutputFilename,
	})
	if err != nil {
		return DownloadOutput{Message: fmt.Sprintf("Error downloading file: saving artifact: %v", err)}, nil
	}
	log.Infof("%s: saved %s (%s, %d bytes) as %s", ToolDownloadFile, in.URL, mimeType, len(data), in.OutputFilename)
	return DownloadOutput{
		ArtifactName: in.OutputFilename,
		MimeType:     mimeType,
		Size:         len(data),
		Version:      version,
		Message:      fmt.Sprintf("Successfully downloaded %s to artifact '%s'", in.URL, in.OutputFilename),
	}, nil
}

func (s *ToolSet) fetch(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", url, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &DownloadError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxDownloadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("download %s: reading body: %w", url, err)
	}
	if int64(len(data)) > s.maxDownloadSize {
		return nil, "", fmt.Errorf("download %s: body exceeds %d bytes", url, s.maxDownloadSize)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// downloadMimeType picks the MIME type of a download: the type registered for the
// file extension, then the response Content-Type, then the sniffed type.
func downloadMimeType(filename, contentType string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			return mt
		}
	}
	mt := mimetype.Detect(data).String()
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return artifact.DefaultMimeType
}
