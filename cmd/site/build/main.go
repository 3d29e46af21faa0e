package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/internal/bootstrap"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

type buildExecutor interface {
	Execute(ctx context.Context, msg sitecmd.BuildMessage) error
}

type moduleResources struct {
	markdown interfaces.MarkdownService
	build    buildExecutor
}

var moduleBuilder = buildResources

func buildResources(opts bootstrap.Options) (*moduleResources, error) {
	module, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	handler := sitecmd.NewBuildSiteHandler(module.Target, module.Logger, sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
	})
	return &moduleResources{
		markdown: module.Service,
		build:    handler,
	}, nil
}

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("site build: %v", err)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("site-build", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	templateDir := fs.String("template-dir", "templates", "Directory containing layout templates")
	outputDir := fs.String("output-dir", "dist", "Directory receiving rendered pages")
	baseURL := fs.String("base-url", "", "Base URL recorded in generated artifacts")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	locales := fs.String("locales", "", "Comma separated list of locales (defaults to config locales)")
	defaultLocale := fs.String("default-locale", "en", "Default locale for fallback documents")
	destination := fs.String("destination", "", "Destination profile receiving the build output")
	clean := fs.Bool("clean", false, "Remove previously generated files before building")
	drafts := fs.Bool("drafts", false, "Include draft posts in the build")
	dryRun := fs.Bool("dry-run", false, "Compute the build plan without writing files")
	skipImport := fs.Bool("skip-import", false, "Skip importing markdown content before the build")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := bootstrap.Options{
		ContentDir:      *contentDir,
		Pattern:         *pattern,
		Recursive:       true,
		DefaultLocale:   *defaultLocale,
		Locales:         bootstrap.SplitLocales(*locales),
		EnableGenerator: true,
		OutputDir:       *outputDir,
		BaseURL:         *baseURL,
		TemplateDir:     *templateDir,
		CleanBuild:      *clean,
	}

	resources, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if resources == nil || resources.build == nil {
		return fmt.Errorf("build handler not configured; ensure Features.Generator is enabled")
	}

	ctx := context.Background()

	if resources.markdown != nil && !*skipImport {
		if _, err := resources.markdown.ImportDirectory(ctx, ".", interfaces.ImportOptions{}); err != nil {
			return fmt.Errorf("import content: %w", err)
		}
	}

	msg := sitecmd.BuildMessage{
		Destination: *destination,
		Locales:     bootstrap.SplitLocales(*locales),
		Clean:       *clean,
		Drafts:      *drafts,
		DryRun:      *dryRun,
		ResultCallback: func(envelope sitecmd.ResultEnvelope) {
			if envelope.Result == nil {
				return
			}
			log.Printf("module=site operation=build summary pages=%d assets=%d feeds=%d duration=%s",
				envelope.Result.PagesBuilt, envelope.Result.AssetsBuilt, envelope.Result.FeedsBuilt, envelope.Result.Duration)
		},
	}
	if err := resources.build.Execute(ctx, msg); err != nil {
		return fmt.Errorf("execute build command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "site build command executed successfully")

	return nil
}
