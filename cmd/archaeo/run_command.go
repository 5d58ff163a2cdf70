package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/i18n"
	"github.com/basel-ax/archaeo/internal/imageloader"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/module"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		outPath string
		target  string
		extra   string
		lang    string
	)

	cmd := &cobra.Command{
		Use:   "run <module> <image>",
		Short: "Run one module on a local image",
		Long: "Runs restoration, translation, mosaic or vase on an image file. Image results\n" +
			"are written to --out, text results are printed.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			id, err := domain.ParseModuleType(args[0])
			if err != nil {
				return err
			}

			findings, db, err := ctx.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			shell, err := module.New(id, ctx.assistantService(findings), ctx.log)
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			img, err := imageloader.New(cfg.MaxUploadBytes, cfg.MaxImageEdge).Load(f)
			f.Close()
			if err != nil {
				return errors.Wrapf(err, "load %s", args[1])
			}

			ui := i18n.Parse(lang)
			shell.SelectImage(img)
			shell.SetContext(extra)
			if err := shell.SetTargetLanguage(target); err != nil {
				return err
			}

			runCtx := logger.WithLogEntry(cmd.Context(), ctx.log.WithField("module", id))
			done, err := shell.Act(runCtx, ui)
			if err != nil {
				return err
			}
			if done == nil {
				return fmt.Errorf("no image loaded from %s", args[1])
			}
			<-done

			out := shell.Outcome()
			if out.Status == domain.StatusFailure {
				return fmt.Errorf("%s (%s)", i18n.T(ui, out.MessageKey), out.Detail)
			}
			return writeResult(cmd, out.Payload, resultPath(outPath, args[1], id))
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file for image results (default <image>-<module>.<ext>)")
	cmd.Flags().StringVar(&target, "target", "", "Translation language: English or Turkish (default follows --lang)")
	cmd.Flags().StringVar(&extra, "context", "", "Optional mosaic context, e.g. period or site")
	cmd.Flags().StringVar(&lang, "lang", "en", "Message language: en or tr")
	return cmd
}

func resultPath(outPath, input string, id domain.ModuleType) string {
	if outPath != "" {
		return outPath
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "-" + string(id)
}

func writeResult(cmd *cobra.Command, p domain.Payload, path string) error {
	if p.Kind == domain.PayloadText {
		fmt.Fprintln(cmd.OutOrStdout(), p.Text)
		return nil
	}

	data, err := p.Image.Bytes()
	if err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		path += imageExtension(p.Image.MIMEType())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".png"
}
