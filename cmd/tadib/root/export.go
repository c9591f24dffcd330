package root

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/ui"
)

func encodeSnapshot(w io.Writer, snap *engine.Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func decodeSnapshot(data []byte, format string) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	return &snap, nil
}

func newExportCmd() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data for the user as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := svc.Export(ctx, tenant)
			if err != nil {
				return err
			}
			if outPath == "" {
				return encodeSnapshot(cmd.OutOrStdout(), snap, format)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := encodeSnapshot(f, snap, format); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ui.Good.Render("Exported to"), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json|yaml)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")

	return cmd
}

func newImportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the user's data with an exported snapshot",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, tenant, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
			}
			snap, err := decodeSnapshot(data, format)
			if err != nil {
				return err
			}
			if err := svc.Import(ctx, tenant, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d task(s), %d categor(ies) into %s\n",
				ui.Good.Render("Imported"), len(snap.Tasks), len(snap.Categories), tenant)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format (json|yaml); default from the file extension")

	return cmd
}
