package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"course-promo/internal/benefits"
	"course-promo/internal/config"
	"course-promo/internal/ledger"
	"course-promo/internal/logging"
	"course-promo/internal/pipeline"
	"course-promo/internal/providers"
	"course-promo/internal/providers/localfile"
	"course-promo/internal/providers/work24"
	"course-promo/internal/render"
	"course-promo/internal/sftpclient"
	"course-promo/internal/stockimage"
)

const uploadTimeout = 5 * time.Minute

func runPromo(cmd *cobra.Command, o *rootOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(o.jsonPath != ""); err != nil {
		return err
	}
	region, _ := cfg.ParsedRegion()

	log, err := logging.New(o.logJSON, o.verbose)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = log.Sync() }()

	provider := courseProvider(cfg, o.jsonPath, log)
	courses := providers.FetchOrEmpty(ctx, provider, log)
	if len(courses) == 0 {
		pterm.Info.WithWriter(out).Println("no courses to process")
		return nil
	}

	store, err := ledger.OpenDir(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	orch := pipeline.New(store, benefits.NewClassifier(region), buildRenderers(cfg, log), pipeline.WithLogger(log))
	res, err := orch.Run(ctx, courses, pipeline.RunOptions{Force: o.force})
	printSummary(out, res)
	if err != nil {
		return errors.Wrap(err, "pipeline run")
	}

	if o.upload {
		uploadNew(ctx, out, cfg, res, log)
	}
	return nil
}

func courseProvider(cfg *config.Config, jsonPath string, log *zap.Logger) providers.CourseProvider {
	if jsonPath != "" {
		return localfile.New(jsonPath, log)
	}
	p := work24.NewProvider(cfg.Work24Client(), cfg.ListParams(time.Now()), log)
	p.Enrich = cfg.Work24.Enrich
	if cfg.Work24.DetailInterval > 0 {
		p.Limiter = rate.NewLimiter(rate.Every(cfg.Work24.DetailInterval), 1)
	}
	return p
}

// buildRenderers fixes the artifact order: card news first, so a missing
// font or photo shows up before the text artifacts.
func buildRenderers(cfg *config.Config, log *zap.Logger) []pipeline.Renderer {
	opts := render.Options{OutputDir: cfg.OutputDir}

	fonts, err := render.LoadFonts(cfg.Fonts.Regular, cfg.Fonts.Bold, log)
	if err != nil {
		log.Warn("font load failed, using built-in font", zap.Error(err))
		fonts = render.DefaultFonts()
	}
	if cfg.PexelsAPIKey == "" {
		log.Warn("PEXELS_API_KEY not set, card news uses gradient backgrounds")
	}
	bg := stockimage.NewSource(cfg.PexelsAPIKey, log)

	return []pipeline.Renderer{
		render.NewCardNewsRenderer(opts, bg, fonts, log),
		render.NewBlogRenderer(opts),
		render.NewCaptionRenderer(opts),
		render.NewReelsRenderer(opts),
		render.NewGuideRenderer(opts),
	}
}

func printSummary(w io.Writer, res pipeline.Result) {
	rows := pterm.TableData{{"Status", "Key", "Title", "Detail"}}
	for _, o := range res.Outcomes {
		detail := ""
		switch o.Status {
		case pipeline.StatusSkipped:
			detail = string(o.Reason)
		case pipeline.StatusFailed:
			detail = o.Renderer
			if o.Err != nil {
				detail += ": " + o.Err.Error()
			}
		case pipeline.StatusCompleted:
			detail = fmt.Sprintf("%d files", countFiles(o.Files))
		}
		rows = append(rows, []string{string(o.Status), o.Key, o.Title, detail})
	}
	if len(rows) > 1 {
		_ = pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render()
	}

	msg := fmt.Sprintf("new %d, skipped %d, failed %d", res.New, res.Skipped, res.Failed)
	if res.Failed > 0 {
		pterm.Warning.WithWriter(w).Println(msg)
		return
	}
	pterm.Success.WithWriter(w).Println(msg)
}

func uploadNew(ctx context.Context, w io.Writer, cfg *config.Config, res pipeline.Result, log *zap.Logger) {
	if !cfg.UploadEnabled() {
		pterm.Warning.WithWriter(w).Println("upload requested but SFTP_HOST/SFTP_USER/SFTP_PASS are not set")
		return
	}
	var files []string
	for _, o := range res.Outcomes {
		if o.Status != pipeline.StatusCompleted {
			continue
		}
		for _, kind := range []string{render.KindCardNews, render.KindBlog, render.KindCaption, render.KindReelsScript, render.KindPostingGuide} {
			files = append(files, o.Files[kind]...)
		}
	}
	if len(files) == 0 {
		return
	}

	uctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	n, err := sftpclient.UploadFiles(uctx, cfg.SFTPClientConfig(), files, log)
	if err != nil {
		log.Error("upload failed", zap.Int("uploaded", n), zap.Int(logging.FieldCount, len(files)), zap.Error(err))
		pterm.Warning.WithWriter(w).Printfln("uploaded %d of %d files: %v", n, len(files), err)
		return
	}
	pterm.Success.WithWriter(w).Printfln("uploaded %d files", n)
}

func countFiles(files map[string][]string) int {
	n := 0
	for _, paths := range files {
		n += len(paths)
	}
	return n
}
