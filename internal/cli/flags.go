package cli

import (
	"time"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string
	Addr    string
	DBPath  string

	// Orchestration flags
	CacheTTL    time.Duration
	FastTimeout time.Duration
	MaxTextLen  int

	// Provider flags
	DisableGemini    bool
	DisableGoogleTTS bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Addr:        ":8080",
		CacheTTL:    time.Hour,
		FastTimeout: 5 * time.Second,
		MaxTextLen:  5000,
	}
}
