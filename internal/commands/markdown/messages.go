package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	importDirectoryMessageType = "press.markdown.import_directory"
	syncDirectoryMessageType   = "press.markdown.sync_directory"
)

// ResultCallback receives the outcome envelope produced by a markdown command
// execution. The callback is optional and invoked synchronously from the
// handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries whichever summary the executed command produced:
// imports fill Import, sync runs fill Sync.
type ResultEnvelope struct {
	Import   *interfaces.ImportResult
	Sync     *interfaces.SyncResult
	Metadata map[string]any
}

// ImportDirectoryCommand triggers a filesystem walk for Markdown documents
// under the provided Directory. The command mirrors markdown.Service
// ImportDirectory semantics, allowing callers to supply import options that
// map directly onto interfaces.ImportOptions for post creation.
type ImportDirectoryCommand struct {
	// Directory selects the content path (relative to the content filesystem) to load Markdown files from.
	Directory string `json:"directory"`
	// AuthorID sets the author reference recorded on created posts.
	AuthorID uuid.UUID `json:"author_id,omitempty"`
	// UpdateExisting overwrites stored posts when their source files changed.
	UpdateExisting bool `json:"update_existing,omitempty"`
	// DryRun toggles preview mode to collect import results without persisting changes.
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportDirectoryCommand) Validate() error {
	err := validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("press.markdown.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
	if err != nil {
		return err
	}
	return nil
}

// SyncDirectoryCommand orchestrates a Markdown sync run for the provided
// Directory, applying deletion or update flags consistent with
// interfaces.SyncOptions.
type SyncDirectoryCommand struct {
	// Directory selects the content path (relative to the content filesystem) to load Markdown files from.
	Directory string `json:"directory"`
	// AuthorID sets the author reference recorded on created posts.
	AuthorID uuid.UUID `json:"author_id,omitempty"`
	// UpdateExisting overwrites stored posts when their source files changed.
	UpdateExisting bool `json:"update_existing,omitempty"`
	// DryRun toggles preview mode to collect sync results without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
	// DeleteOrphaned removes stored posts without matching Markdown files when true.
	DeleteOrphaned bool           `json:"delete_orphaned,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SyncDirectoryCommand) Type() string { return syncDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd SyncDirectoryCommand) Validate() error {
	err := validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("press.markdown.sync_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
	if err != nil {
		return err
	}
	return nil
}
