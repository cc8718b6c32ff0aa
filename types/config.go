package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Actor   ActorConfig   `mapstructure:"actor" validate:"required"`
}

// ProjectConfig holds project-related settings.
type ProjectConfig struct {
	RootDir    string `mapstructure:"rootDir" validate:"required"`
	ExportsDir string `mapstructure:"exportsDir" validate:"required"`
}

// DataConfig holds database configuration.
type DataConfig struct {
	File string `mapstructure:"file" validate:"required"`
}

// ActorConfig identifies the local user on whose behalf mutating
// operations run. Authentication is outside this tool; the id stands in
// for an already-authorized actor.
type ActorConfig struct {
	ID int64 `mapstructure:"id" validate:"required,min=1"`
}
