package workspace

import (
	"time"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
)

// Entry is one named sampling configuration.
type Entry struct {
	Name      string          `json:"name"`
	Config    sampling.Config `json:"config"`
	Source    string          `json:"source,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
