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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/tool"
)

var (
	callText       string
	callImages     []string
	callTranscript string
)

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd, toolsCallCmd)
	toolsCallCmd.Flags().StringVarP(&callText, "message", "m", "", "text of the user turn")
	toolsCallCmd.Flags().StringSliceVarP(&callImages, "image", "i", nil, "local image attached to the user turn")
	toolsCallCmd.Flags().StringVar(&callTranscript, "transcript", "", "JSON export of an earlier conversation searched as history")
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List and call the image tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()
		return printTools(cmd.OutOrStdout(), a.tools.Tools(cmd.Context()))
	},
}

var toolsCallCmd = &cobra.Command{
	Use:   "call <tool> [json-args]",
	Short: "Call a tool with JSON arguments",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		ct, err := tool.Lookup(cmd.Context(), a.tools, args[0])
		if err != nil {
			return err
		}
		content, err := userContent(callText, callImages)
		if err != nil {
			return err
		}
		var opts []agent.InvocationOptions
		if callTranscript != "" {
			items, err := loadTranscript(callTranscript)
			if err != nil {
				return err
			}
			opts = append(opts, agent.WithInvocationTranscript(items))
		}
		ctx, _, err := a.invocationContext(cmd.Context(), content, opts...)
		if err != nil {
			return err
		}
		var jsonArgs []byte
		if len(args) == 2 {
			jsonArgs = []byte(args[1])
		}
		out, err := ct.Call(ctx, jsonArgs)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func printTools(w io.Writer, tools []tool.Tool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, t := range tools {
		decl := t.Declaration()
		fmt.Fprintf(tw, "%s\t%s\n", decl.Name, decl.Description)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
