package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// AudioInfo is an alias to types.AudioInfo.
type AudioInfo = types.AudioInfo
