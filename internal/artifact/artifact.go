//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package artifact provides internal utilities for artifact implementations.
package artifact

import (
	"fmt"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
)

// UserNamespacePrefix marks filenames scoped to the user rather than the session.
const UserNamespacePrefix = "user:"

// FileHasUserNamespace checks if the filename has a user namespace.
func FileHasUserNamespace(filename string) bool {
	return strings.HasPrefix(filename, UserNamespacePrefix)
}

// BuildArtifactPath constructs the artifact path for storage:
//   - user namespace: {app_name}/{user_id}/user/{filename}
//   - session scope:  {app_name}/{user_id}/{session_id}/{filename}
func BuildArtifactPath(sessionInfo artifact.SessionInfo, filename string) string {
	return scopePrefix(sessionInfo, filename) + filename
}

// BuildObjectName constructs the versioned object name used by object store
// backends: BuildArtifactPath followed by "/{version}".
func BuildObjectName(sessionInfo artifact.SessionInfo, filename string, version int) string {
	return fmt.Sprintf("%s%s/%d", scopePrefix(sessionInfo, filename), filename, version)
}

// BuildObjectNamePrefix constructs the prefix that lists every version of a file.
func BuildObjectNamePrefix(sessionInfo artifact.SessionInfo, filename string) string {
	return scopePrefix(sessionInfo, filename) + filename + "/"
}

// BuildSessionPrefix constructs the prefix for session-scoped artifacts.
func BuildSessionPrefix(sessionInfo artifact.SessionInfo) string {
	return fmt.Sprintf("%s/%s/%s/", sessionInfo.AppName, sessionInfo.UserID, sessionInfo.SessionID)
}

// BuildUserNamespacePrefix constructs the prefix for user-namespaced artifacts.
func BuildUserNamespacePrefix(sessionInfo artifact.SessionInfo) string {
	return fmt.Sprintf("%s/%s/user/", sessionInfo.AppName, sessionInfo.UserID)
}

// ParseObjectName splits an object name relative to a scope prefix into its
// filename and version. Keys that do not follow the layout report false.
func ParseObjectName(prefix, key string) (filename string, version int, ok bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found {
		return "", 0, false
	}
	i := strings.LastIndex(rest, "/")
	if i <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(rest[i+1:])
	if err != nil || version < 0 {
		return "", 0, false
	}
	return rest[:i], version, true
}

// LatestVersion returns the highest version, or -1 when versions is empty.
func LatestVersion(versions []int) int {
	latest := -1
	for _, v := range versions {
		if v > latest {
			latest = v
		}
	}
	return latest
}

func scopePrefix(sessionInfo artifact.SessionInfo, filename string) string {
	if FileHasUserNamespace(filename) {
		return BuildUserNamespacePrefix(sessionInfo)
	}
	return BuildSessionPrefix(sessionInfo)
}
