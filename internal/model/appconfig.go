package model

// AppConfig holds user-wide preferences and the defaults applied to new jobs.
type AppConfig struct {
	// Default engine settings applied to new jobs
	DefaultKerfSize          float64           `json:"default_kerf_size"`
	DefaultSortStrategy      SortStrategy      `json:"default_sort_strategy"`
	DefaultSortDirection     SortDirection     `json:"default_sort_direction"`
	DefaultSplitStrategy     SplitStrategy     `json:"default_split_strategy"`
	DefaultSelectionStrategy SelectionStrategy `json:"default_selection_strategy"`
	DefaultAllowRotation     bool              `json:"default_allow_rotation"`
	DefaultStock             string            `json:"default_stock"` // Stock preset name, empty = none

	// Minimum remnant size reported as a reusable offcut (mm)
	MinOffcutDimension float64 `json:"min_offcut_dimension"`

	RecentJobs []string `json:"recent_jobs"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultPackConfig().
func DefaultAppConfig() AppConfig {
	defaults := DefaultPackConfig()
	return AppConfig{
		DefaultKerfSize:          defaults.KerfSize,
		DefaultSortStrategy:      defaults.SortStrategy,
		DefaultSortDirection:     defaults.SortDirection,
		DefaultSplitStrategy:     defaults.SplitStrategy,
		DefaultSelectionStrategy: defaults.SelectionStrategy,
		DefaultAllowRotation:     defaults.RotationAllowed(),
		MinOffcutDimension:       MinOffcutDimension,
		RecentJobs:               []string{},
	}
}

// ApplyToConfig copies the default values from AppConfig into a PackConfig.
// Used when a job does not carry its own settings.
func (c AppConfig) ApplyToConfig(pc *PackConfig) {
	pc.KerfSize = c.DefaultKerfSize
	pc.SortStrategy = c.DefaultSortStrategy
	pc.SortDirection = c.DefaultSortDirection
	pc.SplitStrategy = c.DefaultSplitStrategy
	pc.SelectionStrategy = c.DefaultSelectionStrategy
	pc.NoRotation = !c.DefaultAllowRotation
}

// AddRecentJob moves path to the front of RecentJobs, keeping at most max
// entries.
func (c *AppConfig) AddRecentJob(path string, max int) {
	jobs := []string{path}
	for _, j := range c.RecentJobs {
		if j != path {
			jobs = append(jobs, j)
		}
	}
	if max > 0 && len(jobs) > max {
		jobs = jobs[:max]
	}
	c.RecentJobs = jobs
}
