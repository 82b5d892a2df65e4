package out

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"

	mediaout "feedvault/internal/modules/media/port/out"
	apperrors "feedvault/internal/platform/errors"
)

// TZFResolver loads the polygon finder on first use.
type TZFResolver struct {
	once   sync.Once
	finder tzf.F
	err    error
}

func NewTZFResolver() mediaout.TimezoneResolver {
	return &TZFResolver{}
}

func (r *TZFResolver) Resolve(_ context.Context, latitude, longitude float64) (*time.Location, error) {
	r.once.Do(func() {
		r.finder, r.err = tzf.NewDefaultFinder()
	})
	if r.err != nil {
		return nil, fmt.Errorf("load timezone finder: %w", r.err)
	}
	name := r.finder.GetTimezoneName(longitude, latitude)
	if name == "" {
		return nil, fmt.Errorf("%w: no timezone at %.4f, %.4f", apperrors.ErrNotFound, latitude, longitude)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", name, err)
	}
	return loc, nil
}
