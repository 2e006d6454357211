package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// Chapter is an alias to types.Chapter.
type Chapter = types.Chapter
