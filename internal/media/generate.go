package media

import (
	"context"
	"strings"

	"artisan/internal/fal"
	"artisan/internal/model"
	"artisan/internal/registry"
)

// Context identifies the run on whose behalf a generation happens. It lives
// only for the duration of one tool call.
type Context struct {
	UserID     string
	ProjectID  string
	ToolCallID string
}

// Generator resolves a capability, invokes its remote model, and re-hosts
// the generated files. The adapter between the tool surface and the remote
// generation API.
type Generator struct {
	invoker  fal.Invoker
	uploader *Uploader
}

func NewGenerator(invoker fal.Invoker, uploader *Uploader) *Generator {
	return &Generator{invoker: invoker, uploader: uploader}
}

// Generate runs the remote model bound to capability with the given input
// and returns the uploaded files. Cancelling ctx releases the remote call.
func (g *Generator) Generate(ctx context.Context, capability registry.CapabilityKey, input map[string]any, genCtx Context) ([]model.MediaFile, error) {
	binding, err := registry.Lookup(capability)
	if err != nil {
		return nil, err
	}

	result, err := g.invoker.Subscribe(ctx, binding.RemoteModelID, input)
	if err != nil {
		return nil, err
	}

	descriptors, err := ExtractFiles(result, binding.Kind)
	if err != nil {
		return nil, err
	}

	files, err := g.uploader.Upload(ctx, descriptors, strings.TrimSpace(genCtx.UserID), binding.Kind)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].UserID = genCtx.UserID
		files[i].ProjectID = genCtx.ProjectID
	}
	return files, nil
}

// Invoke runs the remote model bound to capability and returns the raw
// response without the extract/upload steps. Used by tools whose output is
// data, not media.
func (g *Generator) Invoke(ctx context.Context, capability registry.CapabilityKey, input map[string]any) (map[string]any, error) {
	binding, err := registry.Lookup(capability)
	if err != nil {
		return nil, err
	}
	return g.invoker.Subscribe(ctx, binding.RemoteModelID, input)
}
