package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"albert/internal/domain"
	"albert/internal/recorder"
)

// ImageRenderStage renders one image per illustration prompt. All prompts are
// dispatched concurrently; results are reassembled in prompt order. The stage
// is all-or-nothing: one failed render fails the whole set. Sub-calls already
// in flight run to completion since partial results are discarded anyway.
type ImageRenderStage struct {
	renderer Renderer
	rec      *recorder.Recorder
}

// NewImageRenderStage creates the image-render stage.
func NewImageRenderStage(renderer Renderer, rec *recorder.Recorder) *ImageRenderStage {
	return &ImageRenderStage{renderer: renderer, rec: rec}
}

// Name implements Stage.
func (s *ImageRenderStage) Name() string { return StageImageRender }

// Run implements Stage.
func (s *ImageRenderStage) Run(ctx context.Context, current *domain.PipelineResult) (Merge, error) {
	prompts := current.ImagePrompts

	var wg sync.WaitGroup
	images := make([]string, len(prompts))
	errs := make([]error, len(prompts))

	for i, prompt := range prompts {
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()
			start := time.Now()
			image, err := s.renderer.Render(ctx, p)
			record(ctx, s.rec, current.RunID, StageImageRender, s.renderer.Model(), "", p, image, start, err)
			images[idx] = image
			errs[idx] = err
		}(i, prompt)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, domain.WrapError(domain.ErrFanOutPartialFailure,
				fmt.Sprintf("render of prompt %d failed", i), err)
		}
	}

	return func(r *domain.PipelineResult) {
		r.Images = images
	}, nil
}
