package contract

import "albert/internal/domain"

const (
	minOutlineSections = 3
	maxOutlineSections = 5
	minSectionPoints   = 2
	maxSectionPoints   = 3
)

// ParseOutline extracts a podcast outline from raw generator output. The
// outline has no repair rules beyond the structural parse; section and point
// cardinality is validated as shape.
func ParseOutline(raw string) (*domain.PodcastOutline, error) {
	var outline domain.PodcastOutline
	if err := parseObject(raw, &outline); err != nil {
		return nil, err
	}

	if outline.Title == "" {
		return nil, shapeErrorf("outline has no title")
	}
	if n := len(outline.Sections); n < minOutlineSections || n > maxOutlineSections {
		return nil, shapeErrorf("expected %d to %d outline sections, got %d",
			minOutlineSections, maxOutlineSections, n)
	}
	for i, s := range outline.Sections {
		if s.Title == "" {
			return nil, shapeErrorf("outline section %d has no title", i)
		}
		if n := len(s.Content); n < minSectionPoints || n > maxSectionPoints {
			return nil, shapeErrorf("outline section %d: expected %d to %d points, got %d",
				i, minSectionPoints, maxSectionPoints, n)
		}
	}

	return &outline, nil
}
