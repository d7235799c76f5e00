//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
)

var resolveImages []string

func init() {
	rootCmd.AddCommand(artifactsCmd)
	artifactsCmd.AddCommand(artifactsListCmd, artifactsResolveCmd)
	artifactsResolveCmd.Flags().StringSliceVarP(&resolveImages, "image", "i", nil, "local image attached to the user turn")
}

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect the artifact store of the configured session",
}

var artifactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List artifact names and versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()
		info, err := a.sessionInfo()
		if err != nil {
			return err
		}
		return listArtifacts(cmd, a.store, info)
	},
}

var artifactsResolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve an artifact name to a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()
		content, err := userContent("", resolveImages)
		if err != nil {
			return err
		}
		ctx, _, err := a.invocationContext(cmd.Context(), content)
		if err != nil {
			return err
		}
		cc, err := agent.NewCallbackContext(ctx)
		if err != nil {
			return err
		}
		res, err := cc.ResolveArtifact(args[0])
		if err != nil {
			return fmt.Errorf("%s (%s): %w", resolver.Describe(args[0], err), resolver.Outcome(err), err)
		}
		return printResolved(cmd.OutOrStdout(), res)
	},
}

func listArtifacts(cmd *cobra.Command, store artifact.Service, info artifact.SessionInfo) error {
	ctx := cmd.Context()
	keys, err := store.ListArtifactKeys(ctx, info)
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	w := cmd.OutOrStdout()
	if len(keys) == 0 {
		fmt.Fprintln(w, "No artifacts found.")
		return nil
	}
	for _, k := range keys {
		versions, err := store.ListVersions(ctx, info, k)
		if err != nil {
			return fmt.Errorf("list versions of %s: %w", k, err)
		}
		fmt.Fprintf(w, "%s\t%v\n", k, versions)
	}
	return nil
}

func printResolved(w io.Writer, res *resolver.Resolved) error {
	out := struct {
		Name       string `json:"name"`
		Path       string `json:"path"`
		MimeType   string `json:"mime_type"`
		Source     string `json:"source"`
		Size       int    `json:"size"`
		PersistErr string `json:"persist_error,omitempty"`
	}{
		Name:     res.Name,
		Path:     res.Path,
		MimeType: res.MimeType,
		Source:   string(res.Source),
		Size:     len(res.Data),
	}
	if res.PersistErr != nil {
		out.PersistErr = res.PersistErr.Error()
	}
	return printJSON(w, out)
}
