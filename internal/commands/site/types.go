package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/integrity"
)

const (
	buildSiteMessageType  = "press.site.build"
	verifySiteMessageType = "press.site.verify"
	cleanSiteMessageType  = "press.site.clean"
)

// ResultCallback receives the outcome envelope produced by a site command
// execution. The callback is optional and invoked synchronously from the
// handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries whichever artifact the executed command produced:
// builds fill Result, verifications fill Report.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Report   *integrity.Report
	Metadata map[string]any
}

// BuildMessage runs a site build. OutputDir, BaseURL, and Clean override the
// base generator configuration for this run only; the remaining fields narrow
// the build scope.
type BuildMessage struct {
	OutputDir      string         `json:"output_dir,omitempty"`
	BaseURL        string         `json:"base_url,omitempty"`
	Destination    string         `json:"destination,omitempty"`
	Locales        []string       `json:"locales,omitempty"`
	PostIDs        []uuid.UUID    `json:"post_ids,omitempty"`
	Clean          bool           `json:"clean,omitempty"`
	Drafts         bool           `json:"drafts,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildMessage) Type() string { return buildSiteMessageType }

// Validate ensures locales and post identifiers are well-formed.
func (m BuildMessage) Validate() error {
	errs := validation.Errors{}
	for _, locale := range m.Locales {
		if strings.TrimSpace(locale) == "" {
			errs["locales"] = validation.NewError("press.site.build.locale_invalid", "locales must not contain empty values")
			break
		}
	}
	for _, id := range m.PostIDs {
		if id == uuid.Nil {
			errs["post_ids"] = validation.NewError("press.site.build.post_id_invalid", "post_ids must contain valid identifiers")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// VerifyMessage runs the content integrity checks over the content tree.
type VerifyMessage struct {
	ContentDir     string         `json:"content_dir,omitempty"`
	Pattern        string         `json:"pattern,omitempty"`
	Strict         *bool          `json:"strict,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (VerifyMessage) Type() string { return verifySiteMessageType }

// Validate rejects rooted content paths; the verifier walks an fs.FS.
func (m VerifyMessage) Validate() error {
	errs := validation.Errors{}
	if strings.HasPrefix(strings.TrimSpace(m.ContentDir), "/") {
		errs["content_dir"] = validation.NewError("press.site.verify.content_dir_invalid", "content_dir must be relative to the content filesystem")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanMessage clears generated artifacts from the output destination.
type CleanMessage struct{}

// Type implements command.Message.
func (CleanMessage) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanMessage) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
	IntegrityEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

func (g FeatureGates) integrityEnabled() bool {
	if g.IntegrityEnabled == nil {
		return false
	}
	return g.IntegrityEnabled()
}
