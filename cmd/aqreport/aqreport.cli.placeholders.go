package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itsatony/go-aqreport"
	"github.com/spf13/cobra"
)

// placeholderOutput is one role in the JSON listing
type placeholderOutput struct {
	Role         string   `json:"role"`
	File         string   `json:"file"`
	Placeholders []string `json:"placeholders"`
}

func newPlaceholdersCmd() *cobra.Command {
	var dir, format string
	cmd := &cobra.Command{
		Use:   CmdNamePlaceholders,
		Short: HelpPlaceholdersShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaceholders(cmd, dir, format)
		},
	}
	cmd.Flags().StringVarP(&dir, FlagTemplates, FlagTemplatesShort, "", HelpFlagTemplates)
	cmd.Flags().StringVar(&format, FlagFormat, OutputFormatText, HelpFlagFormat)
	return cmd
}

func runPlaceholders(cmd *cobra.Command, dir, format string) error {
	if format != OutputFormatText && format != OutputFormatJSON {
		return newUsageError(ErrMsgInvalidFormat, nil)
	}

	cfg := aqreport.DefaultConfig()
	cfg.Templates.Dir = dir
	set, err := aqreport.LoadTemplateSet(cmd.Context(), cfg.TemplateStore(), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgLoadTemplates, err)
	}

	roles := aqreport.TemplateRoles()
	listing := make([]placeholderOutput, 0, len(roles))
	for _, role := range roles {
		listing = append(listing, placeholderOutput{
			Role:         role.String(),
			File:         role.FileName(),
			Placeholders: set.Get(role).Placeholders().Names(),
		})
	}

	out := cmd.OutOrStdout()
	if format == OutputFormatJSON {
		data, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	for _, entry := range listing {
		fmt.Fprintf(out, FmtPlaceholders, entry.Role, strings.Join(entry.Placeholders, PlaceholderJoiner))
	}
	return nil
}
