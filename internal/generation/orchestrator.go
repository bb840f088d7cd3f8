package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/ytza/ytza/internal/content"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	"github.com/ytza/ytza/internal/observability/logger"
	"github.com/ytza/ytza/internal/observability/metrics"
	projectdomain "github.com/ytza/ytza/internal/project/domain"
	"github.com/ytza/ytza/internal/prompt"
	"github.com/ytza/ytza/internal/thumbnail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Phase names one step of a generation attempt. The zero value means idle.
type Phase string

const (
	PhaseIdle                Phase = ""
	PhaseInitializing        Phase = "initializing"
	PhaseGeneratingThumbnail Phase = "generating-thumbnail"
	PhaseGeneratingContent   Phase = "generating-content"
	PhaseFinalizing          Phase = "finalizing"
)

// Progress maps each phase to the fixed percentage shown in the client.
func (p Phase) Progress() int {
	switch p {
	case PhaseInitializing:
		return 10
	case PhaseGeneratingThumbnail:
		return 40
	case PhaseGeneratingContent:
		return 85
	case PhaseFinalizing:
		return 100
	default:
		return 0
	}
}

// Observer receives phase transitions. Used by streaming handlers; nil is
// fine.
type Observer func(phase Phase, progress int)

var (
	ErrMissingInput        = errors.New("description_and_style_required")
	ErrInsufficientCredits = creditsdomain.ErrInsufficientCredits
)

type SubmitRequest struct {
	UserID       string
	Description  string
	Style        string
	OverlayText  string
	OverlayStyle string
	AIChatInput  string
	Observer     Observer
}

type SubmitResult struct {
	ImageURL string                 `json:"imageUrl"`
	Project  *projectdomain.Project `json:"project,omitempty"`
	Content  content.Result         `json:"content"`
	// SaveError is set when the artifact was generated but persisting it
	// failed. The credit stays spent and the artifact stays usable.
	SaveError string `json:"saveError,omitempty"`
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Credits    creditsdomain.Service
	Prompts    *prompt.Builder
	Thumbnails *thumbnail.Service
	Contents   *content.Service
	Projects   projectdomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

// Orchestrator sequences one generation attempt: credit pre-check, prompt
// assembly, image generation, content generation, persistence. Each step's
// output feeds the next; steps after the image never abort the flow.
type Orchestrator struct {
	log        *zap.Logger
	credits    creditsdomain.Service
	prompts    *prompt.Builder
	thumbnails *thumbnail.Service
	contents   *content.Service
	projects   projectdomain.Service
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func New(p Params) *Orchestrator {
	return &Orchestrator{
		log:        p.Log.Named("generation"),
		credits:    p.Credits,
		prompts:    p.Prompts,
		thumbnails: p.Thumbnails,
		contents:   p.Contents,
		projects:   p.Projects,
		metrics:    p.Metrics,
		tracer:     otel.Tracer("generation"),
	}
}

// Submit runs the full pipeline. Thumbnail failures abort (the debit is
// already refunded downstream); content failures degrade to synthesized
// metadata; save failures are reported in the result without rollback.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.Style) == "" {
		return nil, ErrMissingInput
	}
	notify := req.Observer
	if notify == nil {
		notify = func(Phase, int) {}
	}

	ctx, span := o.tracer.Start(ctx, "generation.submit",
		trace.WithAttributes(attribute.String("style", req.Style)))
	defer span.End()

	notify(PhaseInitializing, PhaseInitializing.Progress())

	// Pre-flight balance read. Racy by design; the debit inside the
	// thumbnail service is the real guard.
	balance, err := o.credits.Balance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if balance < 1 {
		o.metrics.RecordGeneration(req.Style, "insufficient_credits")
		return nil, ErrInsufficientCredits
	}

	notify(PhaseGeneratingThumbnail, PhaseGeneratingThumbnail.Progress())

	builtPrompt, err := o.prompts.GenerateThumbnailPrompt(ctx, prompt.Request{
		Description:  req.Description,
		Style:        req.Style,
		OverlayText:  req.OverlayText,
		OverlayStyle: req.OverlayStyle,
		AIChatInput:  req.AIChatInput,
	})
	if err != nil {
		return nil, err
	}

	imageURL, err := o.thumbnails.Generate(ctx, req.UserID, builtPrompt)
	if err != nil {
		o.metrics.RecordGeneration(req.Style, "thumbnail_failed")
		return nil, err
	}

	notify(PhaseGeneratingContent, PhaseGeneratingContent.Progress())

	// Never fails; degrades to locally synthesized metadata.
	meta, err := o.contents.Generate(ctx, content.Request{
		VideoDescription: req.Description,
		Style:            req.Style,
	})
	if err != nil {
		return nil, err
	}

	notify(PhaseFinalizing, PhaseFinalizing.Progress())

	result := &SubmitResult{ImageURL: imageURL, Content: meta}
	project, err := o.projects.Save(ctx, projectdomain.SaveRequest{
		UserID:                 req.UserID,
		SelectedStyleID:        req.Style,
		ThumbnailStoragePath:   imageURL,
		GeneratedYtTitle:       meta.BestTitle,
		GeneratedYtDescription: meta.BestDescription,
		GeneratedYtTags:        meta.Tags,
	})
	if err != nil {
		logger.FromContext(ctx).Error("project save failed after generation",
			zap.String("user_id", req.UserID),
			zap.String("style", req.Style),
			zap.Error(err),
		)
		result.SaveError = "generated result could not be saved"
		o.metrics.RecordGeneration(req.Style, "save_failed")
	} else {
		result.Project = project
		outcome := "success"
		if meta.Fallback {
			outcome = "success_fallback_content"
		}
		o.metrics.RecordGeneration(req.Style, outcome)
	}

	notify(PhaseIdle, PhaseIdle.Progress())
	return result, nil
}

// RegenerateImage redoes only the thumbnail, preserving existing metadata,
// and persists through the narrower thumbnail update.
func (o *Orchestrator) RegenerateImage(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.Style) == "" {
		return nil, ErrMissingInput
	}

	ctx, span := o.tracer.Start(ctx, "generation.regenerate_image",
		trace.WithAttributes(attribute.String("style", req.Style)))
	defer span.End()

	builtPrompt, err := o.prompts.GenerateThumbnailPrompt(ctx, prompt.Request{
		Description:  req.Description,
		Style:        req.Style,
		OverlayText:  req.OverlayText,
		OverlayStyle: req.OverlayStyle,
		AIChatInput:  req.AIChatInput,
	})
	if err != nil {
		return nil, err
	}

	imageURL, err := o.thumbnails.Generate(ctx, req.UserID, builtPrompt)
	if err != nil {
		o.metrics.RecordGeneration(req.Style, "thumbnail_failed")
		return nil, err
	}

	result := &SubmitResult{ImageURL: imageURL}
	project, err := o.projects.UpdateThumbnail(ctx, req.UserID, req.Style, imageURL)
	if err != nil {
		result.SaveError = "regenerated thumbnail could not be saved"
	} else {
		result.Project = project
	}
	o.metrics.RecordGeneration(req.Style, "image_regenerated")
	return result, nil
}

// RegenerateContent refreshes a single metadata field. Concurrent calls for
// different fields are not serialized; the sparse update keeps them from
// clobbering each other's fields, and same-field races are last-write-wins.
func (o *Orchestrator) RegenerateContent(ctx context.Context, userID, style, description, contentType string) (content.Result, error) {
	ctx, span := o.tracer.Start(ctx, "generation.regenerate_content",
		trace.WithAttributes(attribute.String("content_type", contentType)))
	defer span.End()

	meta, err := o.contents.Generate(ctx, content.Request{
		VideoDescription: description,
		Style:            style,
		ContentType:      contentType,
	})
	if err != nil {
		return content.Result{}, err
	}

	update := projectdomain.ContentUpdate{}
	switch contentType {
	case content.TypeTitles:
		update.Title = &meta.BestTitle
	case content.TypeDescriptions:
		update.Description = &meta.BestDescription
	case content.TypeTags:
		update.Tags = meta.Tags
	}

	if _, err := o.projects.UpdateContent(ctx, userID, style, update); err != nil {
		return content.Result{}, err
	}
	return meta, nil
}
