package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certsend/pkg/certificate"
)

var renderCmd = &cobra.Command{
	Use:     "render",
	Short:   "Render a single certificate locally without emailing it",
	Example: `  certsend render --name "Asha Rao" --id 21CS042`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		id, _ := cmd.Flags().GetString("id")
		if v, _ := cmd.Flags().GetString("folder"); v != "" {
			cfg.CertificateFolder = v
		}

		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if name == "" || id == "" {
			err := errors.New("both --name and --id are required")
			printError("%v", err)
			return err
		}

		r := certificate.New(cfg.CertificateFolder, cfg.Event(),
			append(cfg.RendererOptions(), certificate.WithLogger(appLog))...)
		path, err := r.Render(cmd.Context(), name, id)
		if err != nil {
			printError("%v", err)
			return errors.Join(err, flushLog(cmd.Context()))
		}

		printSuccess("Certificate written to %s", path)
		if err := flushLog(cmd.Context()); err != nil {
			return fmt.Errorf("flush log: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("name", "", "participant name")
	renderCmd.Flags().String("id", "", "participant identifier, used as the file name")
	renderCmd.Flags().String("folder", "", "output folder (default $CERTIFICATE_FOLDER)")
}
