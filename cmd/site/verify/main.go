package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/internal/bootstrap"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
)

type verifyExecutor interface {
	Execute(ctx context.Context, msg sitecmd.VerifyMessage) error
}

type moduleResources struct {
	verify verifyExecutor
}

var moduleBuilder = buildResources

func buildResources(opts bootstrap.Options) (*moduleResources, error) {
	module, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	handler := sitecmd.NewVerifySiteHandler(module.Target, module.Logger, sitecmd.FeatureGates{
		IntegrityEnabled: func() bool { return true },
	})
	return &moduleResources{verify: handler}, nil
}

func main() {
	if err := runVerify(os.Args[1:]); err != nil {
		log.Fatalf("site verify: %v", err)
	}
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("site-verify", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	locales := fs.String("locales", "", "Comma separated list of locales (defaults to config locales)")
	defaultLocale := fs.String("default-locale", "en", "Default locale for fallback documents")
	directory := fs.String("directory", "", "Subtree to verify, relative to the content root")
	strict := fs.Bool("strict", false, "Return a verification error instead of a report when checks fail")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var strictOverride *bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "strict" {
			strictOverride = strict
		}
	})

	opts := bootstrap.Options{
		ContentDir:      *contentDir,
		Pattern:         *pattern,
		Recursive:       true,
		DefaultLocale:   *defaultLocale,
		Locales:         bootstrap.SplitLocales(*locales),
		EnableIntegrity: true,
	}

	resources, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if resources == nil || resources.verify == nil {
		return fmt.Errorf("verify handler not configured; ensure Features.Integrity is enabled")
	}

	failed := false
	msg := sitecmd.VerifyMessage{
		ContentDir: *directory,
		Strict:     strictOverride,
		ResultCallback: func(envelope sitecmd.ResultEnvelope) {
			if envelope.Report == nil {
				return
			}
			for _, check := range envelope.Report.Checks {
				if check.Passed {
					log.Printf("module=site operation=verify check=%s passed", check.Name)
					continue
				}
				failed = true
				log.Printf("module=site operation=verify check=%s failed issues=%d", check.Name, len(check.Issues))
				for _, issue := range check.Issues {
					log.Printf("module=site operation=verify check=%s path=%s detail=%s", check.Name, issue.Path, issue.Detail)
				}
			}
		},
	}
	if err := resources.verify.Execute(context.Background(), msg); err != nil {
		return fmt.Errorf("execute verify command: %w", err)
	}
	if failed {
		return fmt.Errorf("content verification failed")
	}
	fmt.Fprintln(os.Stdout, "site verify command executed successfully")

	return nil
}
